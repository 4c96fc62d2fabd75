// stm-dashboard/models/batch.go
package models

import "gorm.io/gorm"

// Batch is a named cohort of students taught together. The batch name is the
// sole input for student display-ID short codes (see internal/idgen).
type Batch struct {
	gorm.Model
	BatchName string `json:"batchName" gorm:"not null"`
	BatchYear string `json:"batchYear"`
	TeacherID uint   `json:"teacherId" gorm:"index;not null"`

	Students []Student `json:"students,omitempty" gorm:"foreignKey:BatchID"`
	Routines []Routine `json:"routines,omitempty" gorm:"foreignKey:BatchID"`
}
