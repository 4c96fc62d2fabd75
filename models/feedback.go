// stm-dashboard/models/feedback.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Feedback is a free-text note about a student, shown most-recent-first on
// the dashboard.
type Feedback struct {
	gorm.Model
	StudentID    uint      `json:"studentId" gorm:"index;not null"`
	Feedback     string    `json:"feedback" gorm:"not null"`
	Rating       *int      `json:"rating"`
	FeedbackDate time.Time `json:"feedbackDate" gorm:"not null"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}
