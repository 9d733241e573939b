package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/textcipher-go/internal/errors"
	"github.com/textcipher-go/internal/trace"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// RespondError writes a JSON error response with logging
func RespondError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalWithCause("Internal server error", err)
	}

	logger := trace.Logger(c.Request.Context())
	event := logger.Warn()
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		event = logger.Error()
	}
	if appErr.Cause != nil {
		event = event.Err(appErr.Cause)
	}
	event.Int("code", int(appErr.Code)).Msg(appErr.Message)

	c.AbortWithStatusJSON(appErr.HTTPStatus, APIResponse{
		Code: int(appErr.Code),
		Msg:  appErr.Error(),
	})
}

// RespondSuccess writes a JSON success response
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Code: 0,
		Data: data,
	})
}
