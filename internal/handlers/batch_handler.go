// stm-dashboard/internal/handlers/batch_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/internal/middleware"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
)

// BatchResponse carries a batch together with its usage counts for list views.
type BatchResponse struct {
	models.Batch
	StudentCount int64 `json:"studentCount"`
	RoutineCount int64 `json:"routineCount"`
}

const batchCountSelect = `batches.*,
	(SELECT COUNT(*) FROM students WHERE students.batch_id = batches.id AND students.deleted_at IS NULL) AS student_count,
	(SELECT COUNT(*) FROM routines WHERE routines.batch_id = batches.id AND routines.deleted_at IS NULL) AS routine_count`

// ListBatchesHandler returns all batches of the current teacher, newest first.
func ListBatchesHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	batches := []BatchResponse{}
	err := config.DB.Model(&models.Batch{}).
		Select(batchCountSelect).
		Where("batches.teacher_id = ?", teacherID).
		Order("batches.created_at DESC").
		Scan(&batches).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

type BatchInput struct {
	BatchName string `json:"batchName"`
	BatchYear string `json:"batchYear"`
}

// CreateBatchHandler creates a batch. Only the name is required.
func CreateBatchHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input BatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input.BatchName = strings.TrimSpace(input.BatchName)
	if input.BatchName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Batch name is required"})
		return
	}

	batch := models.Batch{
		BatchName: input.BatchName,
		BatchYear: strings.TrimSpace(input.BatchYear),
		TeacherID: teacherID,
	}
	if err := config.DB.Create(&batch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create batch"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusCreated, gin.H{"batch": batch, "message": "Batch created successfully"})
}

// GetBatchHandler returns one batch with counts, 404 outside the teacher scope.
func GetBatchHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	var batch BatchResponse
	res := config.DB.Model(&models.Batch{}).
		Select(batchCountSelect).
		Where("batches.id = ? AND batches.teacher_id = ?", id, teacherID).
		Scan(&batch)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batch"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"batch": batch})
}

// UpdateBatchHandler updates name/year of an owned batch.
func UpdateBatchHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	batch, err := ownedBatch(config.DB, id, teacherID)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batch"})
		return
	}

	var input BatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if name := strings.TrimSpace(input.BatchName); name != "" {
		batch.BatchName = name
	}
	batch.BatchYear = strings.TrimSpace(input.BatchYear)

	if err := config.DB.Save(batch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update batch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"batch": batch, "message": "Batch updated successfully"})
}

// DeleteBatchHandler removes an owned batch.
func DeleteBatchHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	if _, err := ownedBatch(config.DB, id, teacherID); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batch"})
		return
	}

	if err := config.DB.Delete(&models.Batch{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete batch"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"message": "Batch deleted successfully"})
}
