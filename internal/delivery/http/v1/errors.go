package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var errInvalidRequestBody = errors.New("invalid request body")

const (
	msgInvalidID     = "ID must be a positive number"
	msgTitleRequired = "Task title is required"
	msgInvalidUserID = "Invalid user ID"

	problemContentType = "application/problem+json"
	problemTypeServer  = "https://tools.ietf.org/html/rfc9110#section-15.6.1"
)

// apiError is a client error rendered as {"error": Message}.
type apiError struct {
	Code    int
	Message string
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

// abortNotFound replies with a plain text message.
func abortNotFound(c *gin.Context, format string, args ...any) {
	c.String(http.StatusNotFound, format, args...)
	c.Abort()
}

// problemDetails follows RFC 9457.
type problemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func abortWithProblem(c *gin.Context, title string, err error) {
	problem := problemDetails{
		Type:   problemTypeServer,
		Title:  title,
		Status: http.StatusInternalServerError,
	}
	if err != nil {
		problem.Detail = err.Error()
	}

	// gin keeps a Content-Type that is already set.
	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// bindingErrorMessage turns a binding failure into a message
// suitable for a 400 response.
func bindingErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return errInvalidRequestBody.Error()
	}

	fe := validationErrs[0]
	switch fe.Field() {
	case "Title":
		switch fe.Tag() {
		case "required":
			return msgTitleRequired
		case "min":
			return fmt.Sprintf("Task title must be at least %s characters", fe.Param())
		case "max":
			return fmt.Sprintf("Task title must be at most %s characters", fe.Param())
		}
	case "Description":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Task description must be at most %s characters", fe.Param())
		}
	case "UserID":
		return msgInvalidUserID
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
