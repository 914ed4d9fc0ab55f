package controllers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

const (
	guestName   = "Guest User"
	unavailable = "N/A"
)

// bindJSON decodes the body into dst and validates it.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return utils.NewValidationError("", "request body is required")
		}
		return utils.NewValidationError("", "request body is not valid JSON")
	}
	return models.Validate(dst)
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.NewValidationError(name, name+" must be a positive integer")
	}
	return uint(id), nil
}

// notFoundAs turns gorm's missing-record error into a NotFound AppError.
func notFoundAs(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFound(what)
	}
	return err
}

// scopeToCaller restricts a query to the caller's own records unless the
// caller is an admin.
func scopeToCaller(db *gorm.DB, session *utils.SessionClaims) *gorm.DB {
	if session.Role == models.RoleAdmin {
		return db
	}
	return db.Where("user_id = ?", session.SessionPayload.ID)
}

func sessionUserID(session *utils.SessionClaims) *uint {
	if session == nil {
		return nil
	}
	id := session.SessionPayload.ID
	return &id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// mustSession returns the session attached by AuthGuard.Require.
func mustSession(c *gin.Context) (*utils.SessionClaims, bool) {
	session, ok := middlewares.CurrentSession(c)
	if !ok {
		utils.RespondError(c, utils.NewUnauthenticated())
	}
	return session, ok
}
