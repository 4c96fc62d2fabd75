// stm-dashboard/models/routine.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// ScheduleItem is one weekly slot of a class routine.
type ScheduleItem struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Schedule is the ordered list of slots, stored as JSONB.
type Schedule []ScheduleItem

// Value serializes the schedule to JSON for storage.
func (s Schedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan reads the JSON column back into the slice.
func (s *Schedule) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, s)
}

// Validate enforces the routine invariant: a non-empty list where every slot
// carries day, startTime and endTime.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return errors.New("schedule must be a non-empty array")
	}
	for _, item := range s {
		if item.Day == "" || item.StartTime == "" || item.EndTime == "" {
			return errors.New("each schedule item must have day, startTime, and endTime")
		}
	}
	return nil
}

// Routine assigns a course to a batch on a weekly schedule.
type Routine struct {
	gorm.Model
	CourseID uint     `json:"courseId" gorm:"index;not null"`
	BatchID  uint     `json:"batchId" gorm:"index;not null"`
	Schedule Schedule `json:"schedule" gorm:"type:jsonb;not null"`
	IsActive *bool    `json:"isActive" gorm:"default:true"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Batch  *Batch  `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}
