package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

func (h *handlerImpl) HandleGetUserTasks(c *gin.Context) {
	userID, ok := parseID(c)
	if !ok || userID <= 0 {
		abort(c, newBadRequestError(msgInvalidID))
		return
	}

	tasks, err := h.tasks.ListTasksByUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			abortNotFound(c, "User with ID %d not found", userID)
			return
		}

		abortWithProblem(c, "Failed to load tasks", err)
		return
	}

	c.JSON(http.StatusOK, newTaskSummaryResponses(tasks))
}
