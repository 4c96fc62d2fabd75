// stm-dashboard/internal/middleware/auth_middleware.go
package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// CachedTeacher is the identity payload cached in Redis between requests.
type CachedTeacher struct {
	TeacherID uint   `json:"teacher_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

const teacherCacheTTL = 10 * time.Minute

// AuthMiddleware authenticates the request from the auth_token cookie or a
// bearer token and puts the teacher identity into the gin context. Every
// downstream handler reads the owning scope from here; nothing consults
// ambient session state.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				handleAuthError(c, "Authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handleAuthError(c, "Invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})
		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handleAuthError(c, "Invalid token claims")
			return
		}
		idFloat, ok := claims["teacher_id"].(float64)
		if !ok {
			handleAuthError(c, "Invalid teacher ID format in token")
			return
		}
		teacherID := uint(idFloat)

		cacheKey := fmt.Sprintf("teacher:%d:profile", teacherID)
		if config.RDB != nil {
			cached, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var data CachedTeacher
				if json.Unmarshal([]byte(cached), &data) == nil {
					setContextAndProceed(c, &data)
					return
				}
				slog.Warn("Failed to unmarshal cached teacher profile", "teacher_id", teacherID)
			} else if err != redis.Nil {
				slog.Error("Redis GET failed", "error", err, "teacher_id", teacherID)
			}
		}

		var teacher models.Teacher
		if err := config.DB.First(&teacher, teacherID).Error; err != nil {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Teacher from token not found")
			return
		}

		data := CachedTeacher{
			TeacherID: teacher.ID,
			Name:      teacher.Name,
			Email:     teacher.Email,
		}

		if config.RDB != nil {
			if jsonData, err := json.Marshal(data); err == nil {
				if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, teacherCacheTTL).Err(); err != nil {
					slog.Error("Failed to cache teacher profile", "error", err, "teacher_id", teacherID)
				}
			}
		}

		setContextAndProceed(c, &data)
	}
}

func setContextAndProceed(c *gin.Context, data *CachedTeacher) {
	c.Set("teacher_id", data.TeacherID)
	c.Set("teacher_name", data.Name)
	c.Set("teacher_email", data.Email)
	c.Next()
}

// CurrentTeacherID returns the authenticated scope set by AuthMiddleware.
func CurrentTeacherID(c *gin.Context) uint {
	id, _ := c.Get("teacher_id")
	teacherID, _ := id.(uint)
	return teacherID
}

func handleAuthError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
