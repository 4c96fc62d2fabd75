// stm-dashboard/main.go
package main

import (
	"log/slog"
	"os"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; in production everything comes from the environment.
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	config.LoadJWTKey()
	config.ConnectDB()
	config.ConnectRedis()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Static("/static", "./static")

	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
