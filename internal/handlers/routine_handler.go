// stm-dashboard/internal/handlers/routine_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/internal/middleware"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// routineScope restricts routine queries to batches owned by the teacher.
func routineScope(teacherID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN batches ON batches.id = routines.batch_id AND batches.deleted_at IS NULL").
			Where("batches.teacher_id = ?", teacherID)
	}
}

// ListRoutinesHandler returns the teacher's routines with optional
// courseId/batchId/isActive filters. Passing ?id= returns a single routine.
func ListRoutinesHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	if id := c.Query("id"); id != "" {
		var routine models.Routine
		err := config.DB.Model(&models.Routine{}).
			Scopes(routineScope(teacherID)).
			Where("routines.id = ?", id).
			Preload("Course").
			Preload("Batch").
			First(&routine).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routine"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"routine": routine})
		return
	}

	query := config.DB.Model(&models.Routine{}).Scopes(routineScope(teacherID))
	if courseID := c.Query("courseId"); courseID != "" {
		query = query.Where("routines.course_id = ?", courseID)
	}
	if batchID := c.Query("batchId"); batchID != "" {
		query = query.Where("routines.batch_id = ?", batchID)
	}
	if isActive := c.Query("isActive"); isActive != "" {
		query = query.Where("routines.is_active = ?", isActive == "true")
	}

	routines := []models.Routine{}
	err := query.Order("routines.created_at DESC").
		Preload("Course").
		Preload("Batch").
		Find(&routines).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"routines": routines})
}

type RoutineInput struct {
	CourseID uint            `json:"courseId"`
	BatchID  uint            `json:"batchId"`
	Schedule models.Schedule `json:"schedule"`
	IsActive *bool           `json:"isActive"`
}

// CreateRoutineHandler assigns a course to a batch on a weekly schedule.
func CreateRoutineHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input RoutineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.CourseID == 0 || input.BatchID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course and batch are required"})
		return
	}
	if err := input.Schedule.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := ownedCourse(config.DB, input.CourseID, teacherID); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify course"})
		return
	}
	if _, err := ownedBatch(config.DB, input.BatchID, teacherID); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify batch"})
		return
	}

	routine := models.Routine{
		CourseID: input.CourseID,
		BatchID:  input.BatchID,
		Schedule: input.Schedule,
		IsActive: input.IsActive,
	}
	if err := config.DB.Create(&routine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create routine"})
		return
	}

	config.DB.Preload("Course").Preload("Batch").First(&routine, routine.ID)
	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusCreated, gin.H{"routine": routine, "message": "Routine created successfully"})
}

func ownedRoutine(teacherID, id uint) (*models.Routine, error) {
	var routine models.Routine
	err := config.DB.Model(&models.Routine{}).
		Scopes(routineScope(teacherID)).
		Where("routines.id = ?", id).
		First(&routine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotOwned
	}
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

// UpdateRoutineHandler applies a partial update. A new courseId or batchId is
// re-checked for ownership, a new schedule is re-validated.
func UpdateRoutineHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid routine ID"})
		return
	}

	routine, err := ownedRoutine(teacherID, id)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routine"})
		return
	}

	var input RoutineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.CourseID != 0 && input.CourseID != routine.CourseID {
		if _, err := ownedCourse(config.DB, input.CourseID, teacherID); err != nil {
			if errors.Is(err, errNotOwned) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify course"})
			return
		}
		routine.CourseID = input.CourseID
	}
	if input.BatchID != 0 && input.BatchID != routine.BatchID {
		if _, err := ownedBatch(config.DB, input.BatchID, teacherID); err != nil {
			if errors.Is(err, errNotOwned) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify batch"})
			return
		}
		routine.BatchID = input.BatchID
	}
	if input.Schedule != nil {
		if err := input.Schedule.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		routine.Schedule = input.Schedule
	}
	if input.IsActive != nil {
		routine.IsActive = input.IsActive
	}

	if err := config.DB.Save(routine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update routine"})
		return
	}

	config.DB.Preload("Course").Preload("Batch").First(routine, routine.ID)
	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"routine": routine, "message": "Routine updated successfully"})
}

// DeleteRoutineHandler removes an owned routine.
func DeleteRoutineHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid routine ID"})
		return
	}

	if _, err := ownedRoutine(teacherID, id); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routine"})
		return
	}

	if err := config.DB.Delete(&models.Routine{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete routine"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"message": "Routine deleted successfully"})
}

// CoursesBatchesHandler returns the id/title and id/name pairs the routine
// form needs to populate its dropdowns, active courses only.
func CoursesBatchesHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	type courseOption struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}
	type batchOption struct {
		ID        uint   `json:"id"`
		BatchName string `json:"batchName"`
	}

	courses := []courseOption{}
	err := config.DB.Model(&models.Course{}).
		Select("id, title").
		Where("teacher_id = ? AND is_active = ?", teacherID, true).
		Order("title ASC").
		Scan(&courses).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	batches := []batchOption{}
	err = config.DB.Model(&models.Batch{}).
		Select("id, batch_name").
		Where("teacher_id = ?", teacherID).
		Order("batch_name ASC").
		Scan(&batches).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses, "batches": batches})
}
