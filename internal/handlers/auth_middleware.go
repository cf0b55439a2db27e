package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/services"
)

// JWTAuthMiddleware authenticates requests against the auth service's
// signed tokens and places the resulting Actor in the gin context.
type JWTAuthMiddleware struct {
	auth services.AuthService
}

func NewJWTAuthMiddleware(auth services.AuthService) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{auth: auth}
}

// AuthMiddleware returns a Gin middleware that requires a valid bearer token
func (am *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authorization header missing"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "invalid authorization header format"})
			c.Abort()
			return
		}

		actor, err := am.auth.VerifyToken(c.Request.Context(), tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("actor", *actor)
		c.Set("user_id", actor.UserID)
		c.Next()
	}
}

// RequireExamOfficer gates routes to the exam officer role.
func (am *JWTAuthMiddleware) RequireExamOfficer() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("actor")
		if !exists {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
			c.Abort()
			return
		}
		actor, ok := v.(services.Actor)
		if !ok || actor.Role != models.RoleExamOfficer {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "requires exam officer role"})
			c.Abort()
			return
		}
		c.Next()
	}
}
