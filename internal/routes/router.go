// stm-dashboard/internal/routes/router.go
package routes

import (
	"github.com/riajulpro/stm-dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every route of the application onto the engine.
func SetupRoutes(r *gin.Engine) {
	// Public routes first: registration, login, logout.
	RegisterAuthRoutes(r)

	// Everything else requires a valid token.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
