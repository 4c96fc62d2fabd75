// stm-dashboard/internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 24 * time.Hour

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a new teacher account.
func RegisterHandler(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Teacher
	err := config.DB.Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing accounts"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	teacher := models.Teacher{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := config.DB.Create(&teacher).Error; err != nil {
		slog.Error("Failed to create teacher", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"teacher": gin.H{"id": teacher.ID, "name": teacher.Name, "email": teacher.Email},
		"message": "Account created successfully",
	})
}

// LoginHandler verifies credentials and issues the JWT session cookie.
func LoginHandler(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var teacher models.Teacher
	if err := config.DB.Where("email = ?", input.Email).First(&teacher).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"teacher_id": teacher.ID,
		"exp":        time.Now().Add(tokenLifetime).Unix(),
	})
	tokenStr, err := token.SignedString(config.JwtKey)
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.SetCookie("auth_token", tokenStr, int(tokenLifetime.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":   tokenStr,
		"teacher": gin.H{"id": teacher.ID, "name": teacher.Name, "email": teacher.Email},
	})
}

// LogoutHandler clears the session cookie.
func LogoutHandler(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
