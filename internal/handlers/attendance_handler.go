// stm-dashboard/internal/handlers/attendance_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/internal/middleware"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return models.DayOf(t), nil
}

// attendanceScope restricts attendance queries to the teacher's students.
func attendanceScope(teacherID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN students ON students.id = attendances.student_id AND students.deleted_at IS NULL").
			Where("students.teacher_id = ?", teacherID)
	}
}

// ListAttendancesHandler returns attendance records filtered by studentId,
// status, an exact date or a startDate/endDate range, newest date first.
// Passing ?id= returns a single record instead.
func ListAttendancesHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	if id := c.Query("id"); id != "" {
		var attendance models.Attendance
		err := config.DB.Model(&models.Attendance{}).
			Scopes(attendanceScope(teacherID)).
			Where("attendances.id = ?", id).
			Preload("Student.Batch").
			First(&attendance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance record"})
			return
		}
		c.JSON(http.StatusOK, attendance)
		return
	}

	query := config.DB.Model(&models.Attendance{}).Scopes(attendanceScope(teacherID))
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where("attendances.student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("attendances.status = ?", status)
	}

	if dateStr := c.Query("date"); dateStr != "" {
		day, err := parseDay(dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query = query.Where("attendances.date >= ? AND attendances.date < ?", day, day.AddDate(0, 0, 1))
	} else {
		if startStr := c.Query("startDate"); startStr != "" {
			day, err := parseDay(startStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("attendances.date >= ?", day)
		}
		if endStr := c.Query("endDate"); endStr != "" {
			day, err := parseDay(endStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("attendances.date <= ?", day)
		}
	}

	attendances := []models.Attendance{}
	if err := query.Order("attendances.date DESC").Preload("Student.Batch").Find(&attendances).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance records"})
		return
	}

	c.JSON(http.StatusOK, attendances)
}

type AttendanceInput struct {
	StudentID uint   `json:"studentId"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
}

// CreateAttendanceHandler records one student's attendance for one day.
// A second record for the same (student, date) pair answers 409.
func CreateAttendanceHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input AttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.StudentID == 0 || input.Date == "" || input.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studentId, date, and status are required"})
		return
	}
	if !models.ValidAttendanceStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be one of: present, absent, late, excused"})
		return
	}

	day, err := parseDay(input.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := ownedStudent(config.DB, input.StudentID, teacherID); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify student"})
		return
	}

	attendance := models.Attendance{
		StudentID: input.StudentID,
		Date:      day,
		Status:    input.Status,
		Remarks:   input.Remarks,
	}
	if err := config.DB.Create(&attendance).Error; err != nil {
		if strings.Contains(err.Error(), "idx_attendances_student_date") {
			c.JSON(http.StatusConflict, gin.H{"error": "Attendance record already exists for this student on this date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create attendance record"})
		return
	}

	config.DB.Preload("Student.Batch").First(&attendance, attendance.ID)
	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusCreated, attendance)
}

type BulkAttendanceInput struct {
	StudentIDs []uint `json:"studentIds"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

// BulkAttendanceHandler applies one status to many students for one day as a
// single all-or-nothing transaction, upserting on (student, date) so a
// re-submission updates in place instead of duplicating rows.
func BulkAttendanceHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input BulkAttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.StudentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No students selected"})
		return
	}
	if !models.ValidAttendanceStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be one of: present, absent, late, excused"})
		return
	}

	day, err := parseDay(input.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentIDs := uniqueIDs(input.StudentIDs)

	// All listed students must belong to the caller.
	var owned int64
	if err := config.DB.Model(&models.Student{}).
		Where("teacher_id = ? AND id IN ?", teacherID, studentIDs).
		Count(&owned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify students"})
		return
	}
	if owned != int64(len(studentIDs)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "One or more students not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for _, studentID := range studentIDs {
			attendance := models.Attendance{
				StudentID: studentID,
				Date:      day,
				Status:    input.Status,
				Remarks:   input.Remarks,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "student_id"}, {Name: "date"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"status":     input.Status,
					"remarks":    input.Remarks,
					"updated_at": time.Now(),
				}),
			}).Create(&attendance).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attendance"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func ownedAttendance(teacherID, id uint) (*models.Attendance, error) {
	var attendance models.Attendance
	err := config.DB.Model(&models.Attendance{}).
		Scopes(attendanceScope(teacherID)).
		Where("attendances.id = ?", id).
		First(&attendance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotOwned
	}
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

// UpdateAttendanceHandler replaces the mutable fields of a record (PUT).
func UpdateAttendanceHandler(c *gin.Context) {
	updateAttendance(c, false)
}

// PatchAttendanceHandler applies only the provided fields (PATCH).
func PatchAttendanceHandler(c *gin.Context) {
	updateAttendance(c, true)
}

func updateAttendance(c *gin.Context, partial bool) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendance ID"})
		return
	}

	attendance, err := ownedAttendance(teacherID, id)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance record"})
		return
	}

	var input AttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status != "" {
		if !models.ValidAttendanceStatus(input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be one of: present, absent, late, excused"})
			return
		}
		attendance.Status = input.Status
	} else if !partial {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if input.Date != "" {
		day, err := parseDay(input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		attendance.Date = day
	}
	if input.Remarks != "" || !partial {
		attendance.Remarks = input.Remarks
	}

	if err := config.DB.Save(attendance).Error; err != nil {
		if strings.Contains(err.Error(), "idx_attendances_student_date") {
			c.JSON(http.StatusConflict, gin.H{"error": "Attendance record already exists for this student on this date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attendance record"})
		return
	}

	config.DB.Preload("Student.Batch").First(attendance, attendance.ID)
	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, attendance)
}

// DeleteAttendanceHandler hard-deletes one record. No tombstones: a deleted
// day can be recorded again.
func DeleteAttendanceHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendance ID"})
		return
	}

	if _, err := ownedAttendance(teacherID, id); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance record"})
		return
	}

	if err := config.DB.Unscoped().Delete(&models.Attendance{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attendance record"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"message": "Attendance record deleted successfully"})
}
