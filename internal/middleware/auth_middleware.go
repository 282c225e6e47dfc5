package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/errors"
	"github.com/sunhobaek/freshmarket-backend/pkg/redis"
	"github.com/sunhobaek/freshmarket-backend/pkg/util"
)

// Context keys for request-scoped auth state
const (
	UserIDKey = "user_id"
	ClaimsKey = "claims"
	TokenKey  = "token"
)

type AuthMiddleware struct {
	jwtSecret string
	userRepo  repository.UserRepository
}

func NewAuthMiddleware(jwtSecret string, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		userRepo:  userRepo,
	}
}

// Authenticate validates the bearer token and resolves it to an existing
// user. Revoked tokens and tokens for deleted users are both rejected.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, errors.MsgInvalidToken)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, errors.MsgInvalidToken)
			c.Abort()
			return
		}
		token := parts[1]

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			errors.Unauthorized(c, errors.MsgInvalidToken)
			c.Abort()
			return
		}

		blacklisted, err := redis.IsTokenBlacklisted(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token blacklist check failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if blacklisted {
			log.Warn("Rejected blacklisted token", map[string]interface{}{
				"user_id": claims.UserID,
			})
			errors.Unauthorized(c, errors.MsgInvalidToken)
			c.Abort()
			return
		}

		if _, err := m.userRepo.FindByID(claims.UserID); err != nil {
			log.Warn("Token user does not exist", map[string]interface{}{
				"user_id": claims.UserID,
			})
			errors.Unauthorized(c, errors.MsgInvalidUser)
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Set(TokenKey, token)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
		})

		c.Next()
	}
}

// GetUserID extracts the authenticated user's ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetClaims extracts the token claims from context
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	return claims.(*util.Claims), true
}

// GetToken extracts the raw bearer token from context
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(TokenKey)
	if !exists {
		return "", false
	}
	return token.(string), true
}
