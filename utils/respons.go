package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// RespondJSON writes payload with a "success" flag derived from code.
func RespondJSON(c *gin.Context, code int, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = code >= 200 && code < 300
	c.JSON(code, payload)
}

// RespondError writes a client-safe error envelope. Internal errors are
// logged with their detail and replaced by a generic message.
func RespondError(c *gin.Context, err error) {
	code := StatusFor(err)

	var appErr *AppError
	if code >= 500 || !errors.As(err, &appErr) {
		ErrorLogger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Errorf("request failed: %v", err)

		c.AbortWithStatusJSON(code, gin.H{
			"success": false,
			"error":   MsgInternalError,
		})
		return
	}

	body := gin.H{
		"success": false,
		"error":   appErr.Message,
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.AbortWithStatusJSON(code, body)
}
