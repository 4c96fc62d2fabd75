// stm-dashboard/models/result.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Result is one exam score. Dashboard top-performer ranking averages
// MarksObtained per student.
type Result struct {
	gorm.Model
	StudentID     uint      `json:"studentId" gorm:"index;not null"`
	CourseID      uint      `json:"courseId" gorm:"index;not null"`
	ExamName      string    `json:"examName" gorm:"not null"`
	MarksObtained float64   `json:"marksObtained" gorm:"not null"`
	TotalMarks    float64   `json:"totalMarks" gorm:"not null"`
	ExamDate      time.Time `json:"examDate"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}
