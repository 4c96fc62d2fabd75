// stm-dashboard/internal/handlers/course_handler.go
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

// CourseResponse carries a course with its usage counts.
type CourseResponse struct {
	models.Course
	SubscriptionCount int64 `json:"subscriptionCount"`
	RoutineCount      int64 `json:"routineCount"`
	ResultCount       int64 `json:"resultCount"`
}

const courseCountSelect = `courses.*,
	(SELECT COUNT(*) FROM course_subscriptions WHERE course_subscriptions.course_id = courses.id AND course_subscriptions.deleted_at IS NULL) AS subscription_count,
	(SELECT COUNT(*) FROM routines WHERE routines.course_id = courses.id AND routines.deleted_at IS NULL) AS routine_count,
	(SELECT COUNT(*) FROM results WHERE results.course_id = courses.id AND results.deleted_at IS NULL) AS result_count`

// ListCoursesHandler returns the teacher's courses, optionally filtered by
// isActive, newest first.
func ListCoursesHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	query := config.DB.Model(&models.Course{}).
		Select(courseCountSelect).
		Where("courses.teacher_id = ?", teacherID)
	if isActive := c.Query("isActive"); isActive != "" {
		query = query.Where("courses.is_active = ?", isActive == "true")
	}

	courses := []CourseResponse{}
	if err := query.Order("courses.created_at DESC").Scan(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

type CourseInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	CourseFee      *float64 `json:"courseFee"`
	CourseDuration *int     `json:"courseDuration"`
	CourseFor      string   `json:"courseFor"`
	IsActive       *bool    `json:"isActive"`
}

// CreateCourseHandler creates a course after validating fee and duration.
func CreateCourseHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	input.CourseFor = strings.TrimSpace(input.CourseFor)
	if input.Title == "" || input.CourseFee == nil || input.CourseDuration == nil || input.CourseFor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if *input.CourseFee < 0 || *input.CourseDuration < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course fee must be non-negative and duration must be at least 1 month"})
		return
	}

	course := models.Course{
		Title:          input.Title,
		Description:    strings.TrimSpace(input.Description),
		CourseFee:      *input.CourseFee,
		CourseDuration: *input.CourseDuration,
		CourseFor:      input.CourseFor,
		IsActive:       input.IsActive,
		TeacherID:      teacherID,
	}
	if err := config.DB.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusCreated, gin.H{"course": course, "message": "Course created successfully"})
}

// GetCourseHandler returns one owned course with counts.
func GetCourseHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	var course CourseResponse
	res := config.DB.Model(&models.Course{}).
		Select(courseCountSelect).
		Where("courses.id = ? AND courses.teacher_id = ?", id, teacherID).
		Scan(&course)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// UpdateCourseHandler applies a partial update to an owned course.
func UpdateCourseHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	course, err := ownedCourse(config.DB, id, teacherID)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}

	var input CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		course.Title = title
	}
	if input.Description != "" {
		course.Description = strings.TrimSpace(input.Description)
	}
	if input.CourseFee != nil {
		if *input.CourseFee < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Course fee must be non-negative"})
			return
		}
		course.CourseFee = *input.CourseFee
	}
	if input.CourseDuration != nil {
		if *input.CourseDuration < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Course duration must be at least 1 month"})
			return
		}
		course.CourseDuration = *input.CourseDuration
	}
	if courseFor := strings.TrimSpace(input.CourseFor); courseFor != "" {
		course.CourseFor = courseFor
	}
	if input.IsActive != nil {
		course.IsActive = input.IsActive
	}

	if err := config.DB.Save(course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"course": course, "message": "Course updated successfully"})
}

// DeleteCourseHandler removes an owned course.
func DeleteCourseHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	if _, err := ownedCourse(config.DB, id, teacherID); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}

	if err := config.DB.Delete(&models.Course{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}
