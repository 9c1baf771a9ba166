package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondSuccess wraps data in the standard success envelope.
func RespondSuccess(c *gin.Context, data interface{}, meta interface{}) {
	body := gin.H{
		"status": "success",
		"data":   data,
	}
	if meta != nil {
		body["meta"] = meta
	}
	c.JSON(http.StatusOK, body)
}

// RespondError sends an error envelope with the given status code.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status": "error",
		"error":  message,
	})
}
