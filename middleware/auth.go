package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

const (
	CtxUser   = "user"
	CtxClaims = "claims"
)

// tokenFromHeader accepts "Token <jwt>" and "Bearer <jwt>".
func tokenFromHeader(h string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
	default:
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// AuthToken validates the Authorization header, loads the user and injects
// it into the context.
func AuthToken(db *gorm.DB, secret string, blacklist utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication credentials were not provided"})
			return
		}

		claims, err := utils.VerifyToken(secret, rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		revoked, err := blacklist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			slog.Error("token revocation lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Cannot verify token"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
			return
		}

		uid, err := claims.UID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid subject"})
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, uid).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// CurrentUser returns the user injected by AuthToken.
func CurrentUser(c *gin.Context) models.User {
	return c.MustGet(CtxUser).(models.User)
}
