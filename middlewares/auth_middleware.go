package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "auth-token"

const sessionKey = "session"

// Outcome is the result of checking a request's credentials.
type Outcome int

const (
	Authenticated Outcome = iota
	Unauthenticated
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// AuthGuard verifies session tokens for API handlers. It is the only place
// that decides whether a request is authenticated or authorized.
type AuthGuard struct {
	Creds     *utils.CredentialService
	Blacklist utils.TokenBlacklist
}

func NewAuthGuard(creds *utils.CredentialService, blacklist utils.TokenBlacklist) *AuthGuard {
	return &AuthGuard{Creds: creds, Blacklist: blacklist}
}

// TokenFromRequest returns the session token from the cookie, falling back
// to the Authorization bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Check verifies the request token and, when role is not empty, that the
// session holds that role. A revoked token is unauthenticated.
func (g *AuthGuard) Check(r *http.Request, role string) (*utils.SessionClaims, Outcome) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return nil, Unauthenticated
	}

	claims, err := g.Creds.VerifyToken(raw)
	if err != nil {
		return nil, Unauthenticated
	}

	if g.Blacklist != nil {
		revoked, err := g.Blacklist.IsRevoked(r.Context(), claims.RegisteredClaims.ID)
		if err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"path": r.URL.Path,
			}).Errorf("revocation lookup failed: %v", err)
			return nil, Unauthenticated
		}
		if revoked {
			return nil, Unauthenticated
		}
	}

	if role != "" && claims.Role != role {
		return claims, Forbidden
	}
	return claims, Authenticated
}

// Require aborts with 401 or 403 unless the request carries a valid session
// with the given role. An empty role accepts any authenticated user.
func (g *AuthGuard) Require(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, outcome := g.Check(c.Request, role)
		switch outcome {
		case Unauthenticated:
			utils.RespondError(c, utils.NewUnauthenticated())
			return
		case Forbidden:
			utils.InfoLogger.Printf("Forbidden: user %d (%s) on %s", claims.SessionPayload.ID, claims.Role, c.Request.URL.Path)
			utils.RespondError(c, utils.NewForbidden())
			return
		}

		c.Set(sessionKey, claims)
		c.Next()
	}
}

// Optional attaches the session when the request carries a valid one and
// lets every request through.
func (g *AuthGuard) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, outcome := g.Check(c.Request, ""); outcome == Authenticated {
			c.Set(sessionKey, claims)
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by Require or Optional.
func CurrentSession(c *gin.Context) (*utils.SessionClaims, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.SessionClaims)
	return claims, ok && claims != nil
}
