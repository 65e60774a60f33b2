package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextEmailKey stores the email claim inside Gin context.
	ContextEmailKey = "email"
	// ContextRoleKey stores the role claim inside Gin context.
	ContextRoleKey = "role"
	// ContextClaimsKey stores the parsed *utils.Claims.
	ContextClaimsKey = "claims"
)

// Cookie names checked, in order, when no bearer header is present.
const (
	UserTokenCookie  = "token"
	AdminTokenCookie = "admin_token"
)

// TokenFromRequest returns the bearer token, falling back to the session cookies.
func TokenFromRequest(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	for _, name := range []string{UserTokenCookie, AdminTokenCookie} {
		if v, err := ctx.Cookie(name); err == nil && v != "" {
			return v
		}
	}
	return ""
}

// AuthRequired ensures the request is authenticated via JWT and that the token was not
// revoked by a logout.
func AuthRequired(revocations utils.RevocationStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := TokenFromRequest(ctx)
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "no token provided")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "authentication failed")
			ctx.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "authentication failed")
			ctx.Abort()
			return
		}

		if revocations != nil && claims.ID != "" {
			revoked, err := revocations.IsRevoked(ctx.Request.Context(), claims.ID)
			if err != nil {
				utils.Sugar.Warnf("revocation lookup failed jti=%s err=%v", claims.ID, err)
			} else if revoked {
				utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
				ctx.Abort()
				return
			}
		}

		ctx.Set(ContextUserIDKey, userID)
		ctx.Set(ContextEmailKey, claims.Email)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Set(ContextClaimsKey, claims)
		ctx.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := ctx.Get(ContextUserIDKey); !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40108, "authentication required")
			ctx.Abort()
			return
		}
		if ctx.GetString(ContextRoleKey) != models.RoleAdmin {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
