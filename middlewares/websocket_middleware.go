package middlewares

import (
	"github.com/gin-gonic/gin"
)

// WebSocketToken lets browser websocket clients, which cannot set headers,
// pass the session token as ?token=. It only fills the Authorization header
// when the request carries no other credentials.
func WebSocketToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.Query("token"); token != "" && TokenFromRequest(c.Request) == "" {
			c.Request.Header.Set("Authorization", "Bearer "+token)
		}
		c.Next()
	}
}
