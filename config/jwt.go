// stm-dashboard/config/jwt.go
package config

import (
	"log/slog"
	"os"
)

var JwtKey []byte

func LoadJWTKey() {
	key := os.Getenv("JWT_SECRET")
	if key == "" {
		slog.Error("JWT_SECRET environment variable is not set")
		os.Exit(1)
	}
	JwtKey = []byte(key)
}
