// stm-dashboard/models/course.go
package models

import "gorm.io/gorm"

// Course is a billable offering. CourseDuration is in months and together
// with CourseFee drives subscription validity and payment-status derivation.
type Course struct {
	gorm.Model
	Title          string  `json:"title" gorm:"not null"`
	Description    string  `json:"description"`
	CourseFee      float64 `json:"courseFee" gorm:"not null"`
	CourseDuration int     `json:"courseDuration" gorm:"not null"`
	CourseFor      string  `json:"courseFor" gorm:"not null"`
	IsActive       *bool   `json:"isActive" gorm:"default:true"`
	TeacherID      uint    `json:"teacherId" gorm:"index;not null"`

	Subscriptions []CourseSubscription `json:"subscriptions,omitempty" gorm:"foreignKey:CourseID"`
	Routines      []Routine            `json:"routines,omitempty" gorm:"foreignKey:CourseID"`
	Results       []Result             `json:"results,omitempty" gorm:"foreignKey:CourseID"`
}
