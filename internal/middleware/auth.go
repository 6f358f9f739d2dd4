package middleware

import (
	"strings"
	"toast_backend/internal/config"
	"toast_backend/internal/model"
	"toast_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the single supported identity: a JWT bearer token.
// The token may also arrive as ?token= for the websocket handshake, where
// browsers cannot set headers. Missing or invalid credentials are rejected
// immediately with 401; there is no anonymous fallback.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		cfg := c.MustGet("config").(*config.Config)
		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RoleMiddleware gates a route to the given roles. Admins pass everywhere.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if user.Role == model.Admin || user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type LastSeenRepo interface {
	UpdateLastSeen(userID uint) error
}

// ActivityMiddleware touches last_seen asynchronously so the request path
// never waits on the write.
func ActivityMiddleware(repo LastSeenRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			go repo.UpdateLastSeen(claims.UserID)
		}
		c.Next()
	}
}
