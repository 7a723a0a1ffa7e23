package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler middleware for centralized error handling. Errors are reported
// in the GraphQL error shape so clients parse them the same way as engine
// errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
		}).Error("Request error")

		if c.Writer.Written() {
			return
		}

		response := ErrorResponse{
			Errors:    []ErrorMessage{{Message: "Internal server error"}},
			RequestID: c.GetString(RequestIDKey),
			Timestamp: time.Now().Format(time.RFC3339),
		}
		status := http.StatusInternalServerError
		if err.Type == gin.ErrorTypeBind {
			response.Errors[0].Message = "Invalid request: " + err.Error()
			status = http.StatusBadRequest
		}
		c.JSON(status, response)
	}
}
