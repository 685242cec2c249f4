package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/requestdata"
	"github.com/pashuai/pashuai-backend/internal/services"
)

const tokenCookieName = "token"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// authenticate resolves the session token (cookie first, then bearer header)
// and attaches the user identity to the request context. Aborts with 401 and
// returns false when no valid token is present.
func (am *AuthMiddleware) authenticate(c *gin.Context) bool {
	tokenString := extractToken(c)
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return false
	}
	claims, err := am.authService.VerifyToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return false
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return false
	}
	ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	})
	c.Request = c.Request.WithContext(ctx)
	return true
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireAdmin layers an admin check on authentication. The user record is
// loaded on every request; authorization state is never cached.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.authenticate(c) {
			return
		}
		rd := requestdata.GetRequestData(c.Request.Context())
		user, err := am.authService.GetUserByID(c.Request.Context(), rd.UserID)
		if err != nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(tokenCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
