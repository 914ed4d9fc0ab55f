package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LoginPath      = "/login"
	SignupPath     = "/signup"
	AdminLoginPath = "/admin/login"
	LandingPath    = "/app/menu"
)

// EdgeRedirect decides whether a page request must be redirected. It only
// looks at whether a session cookie is present, never at its validity or
// role; handlers verify the token themselves.
func EdgeRedirect(path string, hasSession bool) (string, bool) {
	if !hasSession {
		if underPrefix(path, "/app") {
			return LoginPath, true
		}
		if underPrefix(path, "/admin") && path != AdminLoginPath {
			return AdminLoginPath, true
		}
		return "", false
	}

	if path == LoginPath || path == SignupPath {
		return LandingPath, true
	}
	return "", false
}

// EdgeGuard applies EdgeRedirect to every request with a 307.
func EdgeGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		hasSession := err == nil && cookie != ""

		if target, ok := EdgeRedirect(c.Request.URL.Path, hasSession); ok {
			c.Redirect(http.StatusTemporaryRedirect, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
