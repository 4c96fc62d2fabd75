// stm-dashboard/internal/handlers/student_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/internal/idgen"
	"github.com/riajulpro/stm-dashboard/internal/middleware"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type StudentInput struct {
	StudentID       string `json:"studentId"` // optional custom display ID
	Name            string `json:"name"`
	InstitutionName string `json:"institutionName"`
	Class           string `json:"class"`
	Gender          string `json:"gender"`
	BatchID         uint   `json:"batchId"`
	Avatar          string `json:"avatar"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	DateOfBirth     string `json:"dateOfBirth"`
	GuardianName    string `json:"guardianName"`
	GuardianPhone   string `json:"guardianPhone"`
}

// ListStudentsHandler returns the teacher's students, newest first, with an
// optional batch filter and pagination.
func ListStudentsHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	query := config.DB.Model(&models.Student{}).Where("teacher_id = ?", teacherID)
	if batchID := c.Query("batchId"); batchID != "" {
		query = query.Where("batch_id = ?", batchID)
	}
	// The chain is shared between finishers below; branch with Session so the
	// built statement is never reused after execution.
	query = query.Session(&gorm.Session{})

	if c.Query("all") == "true" {
		var students []models.Student
		if err := query.Order("created_at DESC").Preload("Batch").Find(&students).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"students": students})
		return
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count students"})
		return
	}

	students := []models.Student{}
	err := query.Scopes(Paginate(c)).Order("created_at DESC").Preload("Batch").Find(&students).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, students, totalRows))
}

// CreateStudentHandler creates a student. The display ID is either validated
// (custom) or allocated from the batch name; in both cases the allocation and
// the insert share one transaction so the unique index on
// (teacher_id, student_id) closes the check-then-act window, retrying once
// when a concurrent creation wins the race.
func CreateStudentHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name == "" || input.InstitutionName == "" || input.Class == "" ||
		input.Gender == "" || input.BatchID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	batch, err := ownedBatch(config.DB, input.BatchID, teacherID)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify batch"})
		return
	}

	student := models.Student{
		TeacherID:       teacherID,
		Name:            input.Name,
		InstitutionName: input.InstitutionName,
		Class:           input.Class,
		Gender:          input.Gender,
		BatchID:         batch.ID,
		Avatar:          input.Avatar,
		Email:           input.Email,
		Phone:           input.Phone,
		Address:         input.Address,
		GuardianName:    input.GuardianName,
		GuardianPhone:   input.GuardianPhone,
	}
	if input.DateOfBirth != "" {
		if t, err := time.Parse("2006-01-02", input.DateOfBirth); err == nil {
			student.DateOfBirth = &t
		}
	}

	customID := strings.TrimSpace(input.StudentID)
	if customID != "" {
		var count int64
		if err := config.DB.Model(&models.Student{}).
			Where("teacher_id = ? AND student_id = ?", teacherID, customID).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify student ID"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Student ID already exists"})
			return
		}
	}

	const createAttempts = 2
	for attempt := 0; ; attempt++ {
		err = config.DB.Transaction(func(tx *gorm.DB) error {
			if customID != "" {
				student.StudentID = customID
			} else {
				generated, err := idgen.Generate(tx, batch.BatchName, teacherID)
				if err != nil {
					return err
				}
				student.StudentID = generated
			}
			return tx.Create(&student).Error
		})
		if err == nil {
			break
		}

		duplicate := strings.Contains(err.Error(), "idx_students_teacher_display")
		if duplicate && customID != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Student ID already exists"})
			return
		}
		if duplicate && attempt < createAttempts-1 {
			// Lost the allocation race; re-derive the next sequence.
			student.ID = 0
			continue
		}

		slog.Error("Failed to create student", "error", err, "teacher_id", teacherID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}

	config.DB.Preload("Batch").First(&student, student.ID)
	invalidateDashboardCache(teacherID)

	c.JSON(http.StatusCreated, gin.H{"student": student, "message": "Student created successfully"})
}

// PreviewStudentIDHandler returns the next display ID for a batch without
// persisting anything.
func PreviewStudentIDHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input struct {
		BatchID uint `json:"batchId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.BatchID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Batch ID is required"})
		return
	}

	batch, err := ownedBatch(config.DB, input.BatchID, teacherID)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify batch"})
		return
	}

	studentID, err := idgen.Generate(config.DB, batch.BatchName, teacherID)
	if err != nil {
		slog.Error("Failed to preview student ID", "error", err, "teacher_id", teacherID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate student ID preview"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"studentId": studentID})
}

// StudentCounts is the related-record summary shown on the detail page.
type StudentCounts struct {
	CourseSubscriptions int64 `json:"courseSubscriptions"`
	Attendances         int64 `json:"attendances"`
	Results             int64 `json:"results"`
	Feedbacks           int64 `json:"feedbacks"`
}

// GetStudentHandler returns one student with batch, subscriptions and counts.
func GetStudentHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	var student models.Student
	err = config.DB.Where("id = ? AND teacher_id = ?", id, teacherID).
		Preload("Batch").
		Preload("CourseSubscriptions.Course").
		First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student"})
		return
	}

	var counts StudentCounts
	config.DB.Model(&models.CourseSubscription{}).Where("student_id = ?", id).Count(&counts.CourseSubscriptions)
	config.DB.Model(&models.Attendance{}).Where("student_id = ?", id).Count(&counts.Attendances)
	config.DB.Model(&models.Result{}).Where("student_id = ?", id).Count(&counts.Results)
	config.DB.Model(&models.Feedback{}).Where("student_id = ?", id).Count(&counts.Feedbacks)

	c.JSON(http.StatusOK, gin.H{"student": student, "counts": counts})
}

// UpdateStudentHandler applies a partial update. The display ID is immutable:
// a request trying to change it is rejected.
func UpdateStudentHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	student, err := ownedStudent(config.DB, id, teacherID)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student"})
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if raw, ok := body["studentId"]; ok {
		if s, _ := raw.(string); s != student.StudentID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Student ID cannot be changed"})
			return
		}
	}

	if raw, ok := body["batchId"]; ok {
		batchID, _ := raw.(float64)
		if uint(batchID) != student.BatchID {
			if _, err := ownedBatch(config.DB, uint(batchID), teacherID); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
				return
			}
			student.BatchID = uint(batchID)
		}
	}

	applyString := func(key string, dst *string) {
		if raw, ok := body[key]; ok {
			s, _ := raw.(string)
			*dst = s
		}
	}
	applyRequired := func(key string, dst *string) {
		if raw, ok := body[key]; ok {
			if s, _ := raw.(string); s != "" {
				*dst = s
			}
		}
	}

	applyRequired("name", &student.Name)
	applyRequired("institutionName", &student.InstitutionName)
	applyRequired("class", &student.Class)
	applyRequired("gender", &student.Gender)
	applyString("avatar", &student.Avatar)
	applyString("email", &student.Email)
	applyString("phone", &student.Phone)
	applyString("address", &student.Address)
	applyString("guardianName", &student.GuardianName)
	applyString("guardianPhone", &student.GuardianPhone)

	if raw, ok := body["dateOfBirth"]; ok {
		if s, _ := raw.(string); s != "" {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				student.DateOfBirth = &t
			}
		} else {
			student.DateOfBirth = nil
		}
	}

	if err := config.DB.Save(student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
		return
	}

	config.DB.Preload("Batch").First(student, student.ID)
	c.JSON(http.StatusOK, gin.H{"student": student, "message": "Student updated successfully"})
}

// DeleteStudentHandler removes an owned student. The delete is unscoped: a
// tombstone would keep holding the display ID in the (teacher_id, student_id)
// unique index, and the allocator would re-propose that ID forever since
// scoped queries cannot see the row that blocks the insert.
func DeleteStudentHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	if _, err := ownedStudent(config.DB, id, teacherID); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student"})
		return
	}

	if err := config.DB.Unscoped().Delete(&models.Student{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted successfully"})
}

// UploadStudentAvatarHandler stores an avatar image for an owned student.
func UploadStudentAvatarHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	student, err := ownedStudent(config.DB, id, teacherID)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student"})
		return
	}

	avatarURL, err := saveUploadedFile(c, fmt.Sprintf("static/uploads/students/%d", student.ID), "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to save avatar: " + err.Error()})
		return
	}

	student.Avatar = avatarURL
	if err := config.DB.Save(student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": student, "message": "Avatar updated successfully"})
}

// ExportStudentsHandler streams the roster as an Excel workbook.
func ExportStudentsHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var students []models.Student
	query := config.DB.Where("teacher_id = ?", teacherID)
	if batchID := c.Query("batchId"); batchID != "" {
		query = query.Where("batch_id = ?", batchID)
	}
	if err := query.Order("student_id ASC").Preload("Batch").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students for export"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Students"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student ID", "Name", "Batch", "Class", "Institution", "Gender", "Phone", "Guardian", "Guardian Phone"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, s := range students {
		row := i + 2
		batchName := ""
		if s.Batch != nil {
			batchName = s.Batch.BatchName
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.StudentID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), s.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), batchName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), s.Class)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), s.InstitutionName)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), s.Gender)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), s.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), s.GuardianName)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), s.GuardianPhone)
	}

	fileName := fmt.Sprintf("students_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
	}
}
