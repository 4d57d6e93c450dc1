package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SignBridge/pkg/errors"
)

// Body is the uniform JSON envelope returned by every API handler.
type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Code: 0, Message: message, Data: data})
}

func Fail(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusBadRequest, Body{Code: -1, Message: message, Data: data})
}

// FailErr maps a classified error onto the matching HTTP status.
func FailErr(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeUnauthenticated, errors.CodeInvalidCredential:
		status = http.StatusUnauthorized
	case errors.CodeForbidden:
		status = http.StatusForbidden
	case errors.CodeQuotaExceeded:
		status = http.StatusTooManyRequests
	case errors.CodeConflict:
		status = http.StatusConflict
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeNotConfigured:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, Body{Code: code, Message: errors.GetMessage(err)})
}
