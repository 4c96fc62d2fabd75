// stm-dashboard/models/attendance.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Attendance statuses accepted by the API.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// ValidAttendanceStatus reports whether s is one of the accepted statuses.
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Attendance is one student's record for one calendar day. Date is stored
// normalized to UTC midnight; the (student, date) pair is unique and bulk
// submissions upsert against it.
type Attendance struct {
	gorm.Model
	StudentID uint      `json:"studentId" gorm:"not null;uniqueIndex:idx_attendances_student_date"`
	Date      time.Time `json:"date" gorm:"not null;uniqueIndex:idx_attendances_student_date"`
	Status    string    `json:"status" gorm:"not null"`
	Remarks   string    `json:"remarks"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
