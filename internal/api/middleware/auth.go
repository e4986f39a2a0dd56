package middleware

import (
	"log/slog"
	"strings"

	"fitcomp/internal/models"
	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
)

// Keys under which AuthMiddleware stores the caller on the gin context.
const (
	ContextUser    = "user"
	ContextSession = "session"
	ContextActor   = "actor"
)

func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header required"})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid authorization header format"})
			return
		}
		token := parts[1]

		if _, err := authService.ParseToken(token); err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid or expired token"})
			return
		}

		session, err := authService.GetSession(token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid or expired token"})
			return
		}

		if !session.User.IsActive {
			slog.Warn("rejected session of inactive user", "user_id", session.UserID)
			c.AbortWithStatusJSON(401, gin.H{"error": "Account is inactive"})
			return
		}

		c.Set(ContextUser, &session.User)
		c.Set(ContextSession, session)
		c.Set(ContextActor, services.Actor{
			UserID:    session.UserID,
			Role:      session.User.Role,
			IPAddress: c.ClientIP(),
		})

		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(403, gin.H{"error": "Forbidden: insufficient permissions"})
	}
}

// GetActor returns the authenticated caller set by AuthMiddleware.
func GetActor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

// GetSession returns the session set by AuthMiddleware.
func GetSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok
}
