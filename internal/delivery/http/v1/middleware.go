package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDCtxKey = "request_id"
)

// HandleRequestID reuses the caller's X-Request-ID or generates one, and
// stores a logger carrying it in the request context.
func (h *handlerImpl) HandleRequestID(c *gin.Context) {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			h.logger.Warn().
				Err(err).
				Msg("failed to generate request uuid")
			id = uuid.New()
		}
		requestID = id.String()
	}

	c.Set(requestIDCtxKey, requestID)
	c.Header(requestIDHeader, requestID)

	logger := h.logger.With().
		Str("request_id", requestID).
		Logger()
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
	c.Next()
}

func (h *handlerImpl) HandleAccessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	logger := h.requestLogger(c)
	status := c.Writer.Status()

	var event *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		event = logger.Error()
	case status >= http.StatusBadRequest:
		event = logger.Warn()
	default:
		event = logger.Info()
	}

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	event.
		Str("method", c.Request.Method).
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Msg("handled request")
}

func (h *handlerImpl) requestLogger(c *gin.Context) *zerolog.Logger {
	logger := zerolog.Ctx(c.Request.Context())
	if logger.GetLevel() == zerolog.Disabled {
		return &h.logger
	}
	return logger
}
