// stm-dashboard/internal/routes/auth_routes.go
package routes

import (
	"github.com/riajulpro/stm-dashboard/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the public authentication routes. These do not
// pass through the token middleware.
func RegisterAuthRoutes(r *gin.Engine) {
	r.POST("/register", handlers.RegisterHandler)
	r.POST("/login", handlers.LoginHandler)
	r.GET("/logout", handlers.LogoutHandler)
}
