package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/finnews/finnews/config"
	"github.com/finnews/finnews/middleware"
	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/utils"
)

// AuthController handles reader and admin accounts.
type AuthController struct {
	db          *gorm.DB
	revocations utils.RevocationStore
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, revocations utils.RevocationStore) *AuthController {
	return &AuthController{db: db, revocations: revocations}
}

type signupRequest struct {
	Name       string `json:"name" binding:"max=128"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=6,max=72"`
	InviteCode string `json:"inviteCode"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a reader account.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req signupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "email and password required")
		return
	}
	user, ok := a.createUser(ctx, req, models.RoleUser)
	if !ok {
		return
	}
	utils.Created(ctx, gin.H{"message": "User created", "user": user})
}

// Login verifies credentials, returns a token and sets the session cookie.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "email and password required")
		return
	}

	user, err := a.findByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		serverError(ctx, 50002, "login", "failed to load user", err)
		return
	}
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}

	token, ok := a.issueToken(ctx, user, middleware.UserTokenCookie)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout revokes the presented token until it expires and clears the session cookies.
func (a *AuthController) Logout(ctx *gin.Context) {
	if !a.revokeCurrent(ctx) {
		return
	}
	clearAuthCookie(ctx, middleware.UserTokenCookie)
	clearAuthCookie(ctx, middleware.AdminTokenCookie)
	utils.Success(ctx, gin.H{"message": "Logged out"})
}

// Me returns the current user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// AdminSignup creates an admin account. When an invite code is configured it must match.
func (a *AuthController) AdminSignup(ctx *gin.Context) {
	var req signupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "email and password required")
		return
	}
	if code := config.Get().AdminInviteCode; code != "" &&
		subtle.ConstantTimeCompare([]byte(code), []byte(strings.TrimSpace(req.InviteCode))) != 1 {
		utils.Error(ctx, http.StatusForbidden, 40302, "invalid invite code")
		return
	}

	user, ok := a.createUser(ctx, req, models.RoleAdmin)
	if !ok {
		return
	}
	token, ok := a.issueToken(ctx, user, middleware.AdminTokenCookie)
	if !ok {
		return
	}
	utils.Created(ctx, gin.H{"message": "Admin account created", "token": token, "user": user})
}

// AdminLogin signs in accounts that already hold the admin role.
func (a *AuthController) AdminLogin(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "email and password required")
		return
	}

	user, err := a.findByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "account not found, please sign up")
		return
	}
	if err != nil {
		serverError(ctx, 50002, "admin_login", "failed to load user", err)
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}
	if !user.IsAdmin() {
		utils.Error(ctx, http.StatusForbidden, 40303, "you are not registered as an admin, please log in from the main page")
		return
	}

	token, ok := a.issueToken(ctx, user, middleware.AdminTokenCookie)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"message": "Authenticated", "token": token, "user": user})
}

// AdminLogout revokes the token and clears the admin cookie.
func (a *AuthController) AdminLogout(ctx *gin.Context) {
	if !a.revokeCurrent(ctx) {
		return
	}
	clearAuthCookie(ctx, middleware.AdminTokenCookie)
	utils.Success(ctx, gin.H{"message": "Logged out"})
}

// AdminProfile returns the current admin's profile. The role is re-checked against the
// stored user since it may have changed after the token was issued.
func (a *AuthController) AdminProfile(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin access required")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

func (a *AuthController) createUser(ctx *gin.Context, req signupRequest, role string) (models.User, bool) {
	email := normalizeEmail(req.Email)
	if _, err := a.findByEmail(ctx, email); err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "user already exists")
		return models.User{}, false
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		serverError(ctx, 50001, "signup", "failed to load user", err)
		return models.User{}, false
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		serverError(ctx, 50003, "signup", "failed to hash password", err)
		return models.User{}, false
	}

	user := models.User{
		Name:         utils.StripTags(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.db.WithContext(ctx.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40901, "user already exists")
			return models.User{}, false
		}
		serverError(ctx, 50004, "signup", "failed to create user", err)
		return models.User{}, false
	}
	return user, true
}

func (a *AuthController) findByEmail(ctx *gin.Context, email string) (models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx.Request.Context()).Where("email = ?", normalizeEmail(email)).First(&user).Error
	return user, err
}

func (a *AuthController) currentUser(ctx *gin.Context) (models.User, bool) {
	var user models.User
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "authentication required")
		return user, false
	}
	err := a.db.WithContext(ctx.Request.Context()).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
		return user, false
	}
	if err != nil {
		serverError(ctx, 50005, "me", "failed to load user", err)
		return user, false
	}
	return user, true
}

// issueToken signs a token for user and stores it in the named cookie.
func (a *AuthController) issueToken(ctx *gin.Context, user models.User, cookie string) (string, bool) {
	ttl := utils.TokenTTL()
	token, _, err := utils.GenerateToken(user, ttl)
	if err != nil {
		serverError(ctx, 50006, "issue_token", "failed to generate token", err)
		return "", false
	}
	setAuthCookie(ctx, cookie, token, int(ttl/time.Second))
	return token, true
}

func (a *AuthController) revokeCurrent(ctx *gin.Context) bool {
	claims, ok := getClaims(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "authentication required")
		return false
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return true
	}
	if err := a.revocations.Revoke(ctx.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		serverError(ctx, 50007, "logout", "failed to revoke token", err)
		return false
	}
	return true
}

func setAuthCookie(ctx *gin.Context, name, value string, maxAge int) {
	secure := config.Get().CookieSecure
	// cross-site frontends only send cookies marked SameSite=None, which requires Secure
	if secure {
		ctx.SetSameSite(http.SameSiteNoneMode)
	} else {
		ctx.SetSameSite(http.SameSiteLaxMode)
	}
	ctx.SetCookie(name, value, maxAge, "/", "", secure, true)
}

func clearAuthCookie(ctx *gin.Context, name string) {
	setAuthCookie(ctx, name, "", -1)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
