package models

// User owns tasks through Task.UserID. The reverse collection is queried,
// never stored on the struct.
type User struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
}
