package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TaskStatus is stored as an integer and rendered by name on the wire.
type TaskStatus int

const (
	StatusTodo TaskStatus = iota
	StatusInProgress
	StatusDone
)

var statusNames = [...]string{
	StatusTodo:       "Todo",
	StatusInProgress: "InProgress",
	StatusDone:       "Done",
}

// ParseStatus maps a raw status value to a declared member. It accepts a
// member name (case-insensitive) or its numeric value. Anything else,
// including the empty string, yields StatusTodo.
func ParseStatus(raw string) TaskStatus {
	raw = strings.TrimSpace(raw)
	for i, name := range statusNames {
		if strings.EqualFold(raw, name) {
			return TaskStatus(i)
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return StatusTodo
	}
	if s := TaskStatus(n); s.IsValid() {
		return s
	}
	return StatusTodo
}

func (s TaskStatus) IsValid() bool {
	return s >= StatusTodo && int(s) < len(statusNames)
}

func (s TaskStatus) String() string {
	if !s.IsValid() {
		return statusNames[StatusTodo]
	}
	return statusNames[s]
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON never fails: unknown values fall back to StatusTodo.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = ParseStatus(str)
		return nil
	}
	*s = ParseStatus(string(data))
	return nil
}

type Task struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"size:60;not null"`
	Description string    `gorm:"size:500;not null"`
	CreatedDate time.Time `gorm:"not null"`
	Deadline    *time.Time
	Status      TaskStatus `gorm:"not null"`
	UserID      *int64     `gorm:"index"`
	User        *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TaskSummary is the projection returned by task listings.
type TaskSummary struct {
	ID          int64
	Title       string
	CreatedDate time.Time
	Status      TaskStatus
}
