package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/auth"
	"salemre/backend/internal/services"
)

// ContextKeyActor holds the authenticated *services.Actor in the Gin context.
const ContextKeyActor = "actor"

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func actorFromToken(token, secret string) (*services.Actor, error) {
	claims, err := auth.ValidateJWT(token, secret)
	if err != nil {
		return nil, err
	}
	return &services.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		actor, err := actorFromToken(token, jwtSecret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// OptionalAuthMiddleware records the actor when a valid bearer token is
// present and lets anonymous requests through. An invalid token is a 401
// rather than a silent downgrade to anonymous.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		actor, err := actorFromToken(token, jwtSecret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// AdminMiddleware requires an admin actor. Runs after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAdmin() {
			abort(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

// ActorFrom returns the request's actor, or nil for anonymous requests.
func ActorFrom(c *gin.Context) *services.Actor {
	v, ok := c.Get(ContextKeyActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*services.Actor)
	return actor
}
