package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

const msgBadCredentials = "invalid email or password"

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier func(user models.User, token string)

type AuthController struct {
	Store        *database.Gateway
	Creds        *utils.CredentialService
	Blacklist    utils.TokenBlacklist
	CookieSecure bool
	NotifyReset  ResetNotifier
}

func NewAuthController(store *database.Gateway, creds *utils.CredentialService, blacklist utils.TokenBlacklist, cookieSecure bool) *AuthController {
	return &AuthController{
		Store:        store,
		Creds:        creds,
		Blacklist:    blacklist,
		CookieSecure: cookieSecure,
		NotifyReset: func(user models.User, _ string) {
			utils.InfoLogger.Printf("Password reset token issued for user %d", user.ID)
		},
	}
}

type userView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Phone: u.Phone}
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookieName, token, maxAge, "/", "", ac.CookieSecure, true)
}

func (ac *AuthController) issueSession(c *gin.Context, user *models.User, code int) {
	token, err := ac.Creds.SignToken(utils.SessionPayload{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
		Name:  user.Name,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ac.setSessionCookie(c, token, int(utils.SessionTTL/time.Second))
	utils.RespondJSON(c, code, gin.H{
		"user":  newUserView(user),
		"token": token,
	})
}

// Signup creates a customer account and signs it in.
func (ac *AuthController) Signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name" validate:"required,max=255"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
		Phone    string `json:"phone" validate:"max=32"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", models.NormalizeEmail(req.Email)).Count(&existing).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, utils.NewConflict("an account with this email already exists"))
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     models.RoleCustomer,
		Phone:    req.Phone,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = utils.NewConflict("an account with this email already exists")
		}
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (id=%d)", user.Email, user.ID)
	ac.issueSession(c, &user, http.StatusCreated)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var user models.User
	if err := db.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, &utils.AppError{Kind: utils.KindUnauthenticated, Message: msgBadCredentials})
			return
		}
		utils.RespondError(c, err)
		return
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !ok {
		utils.InfoLogger.Printf("Failed login for user %d", user.ID)
		utils.RespondError(c, &utils.AppError{Kind: utils.KindUnauthenticated, Message: msgBadCredentials})
		return
	}

	utils.InfoLogger.Printf("Login successful for user %d (role=%s)", user.ID, user.Role)
	ac.issueSession(c, &user, http.StatusOK)
}

// Logout clears the session cookie and revokes the presented token if it is
// still valid. The cookie is cleared even when revocation fails.
func (ac *AuthController) Logout(c *gin.Context) {
	ac.setSessionCookie(c, "", -1)

	if raw := middlewares.TokenFromRequest(c.Request); raw != "" {
		if claims, err := ac.Creds.VerifyToken(raw); err == nil && ac.Blacklist != nil {
			if err := ac.Blacklist.Revoke(c.Request.Context(), claims.RegisteredClaims.ID, claims.ExpiresAt.Time); err != nil {
				utils.RespondError(c, err)
				return
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the identity of the current session.
func (ac *AuthController) Me(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var user models.User
	if err := db.First(&user, session.SessionPayload.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The account behind a still-valid token is gone.
			utils.RespondError(c, utils.NewUnauthenticated())
			return
		}
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{"user": newUserView(&user)})
}

// ForgotPassword issues a reset token for the account, if there is one. The
// response is the same either way.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var user models.User
	err = db.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error
	switch {
	case err == nil:
		token, err := ac.Creds.GenerateResetToken()
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		hash := utils.HashResetToken(token)
		expires := time.Now().Add(utils.ResetTTL)
		if err := db.Model(&user).Updates(map[string]interface{}{
			"reset_token_hash":       hash,
			"reset_token_expires_at": expires,
		}).Error; err != nil {
			utils.RespondError(c, err)
			return
		}
		if ac.NotifyReset != nil {
			ac.NotifyReset(user, token)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{
		"message": "if an account exists for this email, a reset link has been sent",
	})
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	invalid := utils.NewValidationError("token", "reset token is invalid or has expired")
	if !ac.Creds.VerifyResetToken(req.Token) {
		utils.RespondError(c, invalid)
		return
	}

	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var user models.User
	if err := db.Where("reset_token_hash = ?", utils.HashResetToken(req.Token)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, invalid)
			return
		}
		utils.RespondError(c, err)
		return
	}
	if user.ResetTokenExpiresAt == nil || !time.Now().Before(*user.ResetTokenExpiresAt) {
		utils.RespondError(c, invalid)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	user.Password = hashed
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	if err := db.Save(&user).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Password reset for user %d", user.ID)
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "password has been reset"})
}
