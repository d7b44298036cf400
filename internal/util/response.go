package util

import (
	"github.com/gin-gonic/gin"
)

// Response is a loose JSON object body.
type Response map[string]interface{}

// business error codes
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

// JSON writes data as the response body with the given status.
func JSON(c *gin.Context, httpStatus int, data interface{}) {
	c.JSON(httpStatus, data)
}

// Error writes the {code, message} error body.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// ErrorWithDetails is Error plus a details field (e.g. per-item failures).
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, msg string, details interface{}) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"details": details,
	})
}
