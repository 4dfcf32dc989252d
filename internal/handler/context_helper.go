package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/athro-ai/athro-study-api/internal/middleware"
	"github.com/athro-ai/athro-study-api/internal/models"
)

// claimsFromContext returns the JWT claims attached by the auth middleware,
// or nil when the request was not authenticated.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	if value, ok := c.Get(middleware.ContextUserKey); ok {
		if claims, ok := value.(*models.JWTClaims); ok {
			return claims
		}
	}
	return nil
}
