package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	err := h.pinger.PingContext(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to ping database")
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}
