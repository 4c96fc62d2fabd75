// stm-dashboard/models/teacher.go
package models

import "gorm.io/gorm"

// Teacher is the authenticated account. Every other row in the system is
// owned by exactly one teacher and must be filtered by TeacherID on access.
type Teacher struct {
	gorm.Model
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	AvatarURL    string `json:"avatarUrl"`
}
