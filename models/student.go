// stm-dashboard/models/student.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Student represents one enrolled student.
//
// StudentID is the human-readable display identifier (EHA-M1-0001). It is
// allocated once at creation, unique per teacher, and never changed by the
// edit flows.
type Student struct {
	gorm.Model
	StudentID       string `json:"studentId" gorm:"not null;uniqueIndex:idx_students_teacher_display"`
	TeacherID       uint   `json:"teacherId" gorm:"not null;uniqueIndex:idx_students_teacher_display"`
	Name            string `json:"name" gorm:"not null"`
	InstitutionName string `json:"institutionName" gorm:"not null"`
	Class           string `json:"class" gorm:"not null"`
	Gender          string `json:"gender" gorm:"not null"`
	BatchID         uint   `json:"batchId" gorm:"index;not null"`

	Avatar        string     `json:"avatar"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	DateOfBirth   *time.Time `json:"dateOfBirth"`
	GuardianName  string     `json:"guardianName"`
	GuardianPhone string     `json:"guardianPhone"`

	Batch               *Batch               `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	CourseSubscriptions []CourseSubscription `json:"courseSubscriptions,omitempty" gorm:"foreignKey:StudentID"`
	Attendances         []Attendance         `json:"attendances,omitempty" gorm:"foreignKey:StudentID"`
	Results             []Result             `json:"results,omitempty" gorm:"foreignKey:StudentID"`
	Feedbacks           []Feedback           `json:"feedbacks,omitempty" gorm:"foreignKey:StudentID"`
}
