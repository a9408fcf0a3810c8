package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

type Handler interface {
	HandleRequestID(c *gin.Context)
	HandleAccessLog(c *gin.Context)
	HandleHealth(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGetUserTasks(c *gin.Context)
}

// Pinger reports whether the backing store is reachable.
// *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type handlerImpl struct {
	logger zerolog.Logger
	tasks  services.TaskService
	users  services.UserService
	pinger Pinger
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
	userService services.UserService,
	pinger Pinger,
) Handler {
	return &handlerImpl{
		logger: logger,
		tasks:  taskService,
		users:  userService,
		pinger: pinger,
	}
}

// Register mounts every route of the API on the router.
func Register(router gin.IRouter, h Handler) {
	router.GET("/health", h.HandleHealth)

	tasksRouter := router.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)

	usersRouter := router.Group("/users")
	usersRouter.GET("/:id/tasks", h.HandleGetUserTasks)
}
