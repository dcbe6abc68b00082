package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/constants"
	apierrors "github.com/hikarock/kanban-board-api/internal/errors"
)

// RequireAuth verifies the Bearer access token and stores the Principal in
// the gin context. Verification is local; no store round-trip.
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			apierrors.Unauthorized(c, "Authorization header must use the Bearer scheme")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenString, auth.TokenTypeAccess)
		if err != nil {
			apierrors.RespondWithError(c, 401, apierrors.NewAPIError(apierrors.ErrCodeInvalidToken, "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipal, claims.Principal())
		c.Next()
	}
}

// RequireAdmin rejects principals without the global admin role. Must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !principal.IsAdmin() {
			apierrors.Forbidden(c, "Only administrators can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return auth.Principal{}, false
	}

	principal, ok := value.(auth.Principal)
	return principal, ok
}
