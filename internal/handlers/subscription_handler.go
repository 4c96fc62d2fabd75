// stm-dashboard/internal/handlers/subscription_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/internal/middleware"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// subscriptionScope restricts subscription queries to students owned by the
// teacher. Ownership lives on the student row, not the subscription itself.
func subscriptionScope(teacherID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN students ON students.id = course_subscriptions.student_id AND students.deleted_at IS NULL").
			Where("students.teacher_id = ?", teacherID)
	}
}

// ListSubscriptionsHandler returns the teacher's subscriptions with optional
// studentId/courseId/isActive/paymentStatus filters, newest first.
func ListSubscriptionsHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	query := config.DB.Model(&models.CourseSubscription{}).Scopes(subscriptionScope(teacherID))
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where("course_subscriptions.student_id = ?", studentID)
	}
	if courseID := c.Query("courseId"); courseID != "" {
		query = query.Where("course_subscriptions.course_id = ?", courseID)
	}
	if isActive := c.Query("isActive"); isActive != "" {
		query = query.Where("course_subscriptions.is_active = ?", isActive == "true")
	}
	if status := c.Query("paymentStatus"); status != "" {
		query = query.Where("course_subscriptions.payment_status = ?", status)
	}

	subscriptions := []models.CourseSubscription{}
	err := query.Order("course_subscriptions.created_at DESC").
		Preload("Student.Batch").
		Preload("Course").
		Find(&subscriptions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subscriptions})
}

type SubscriptionInput struct {
	StudentID    uint     `json:"studentId"`
	CourseID     uint     `json:"courseId"`
	EnrolledDate string   `json:"enrolledDate"`
	ValidTill    string   `json:"validTill"`
	AmountPaid   *float64 `json:"amountPaid"`
	IsActive     *bool    `json:"isActive"`
}

// CreateSubscriptionHandler enrolls a student in a course. Payment status is
// derived from the paid amount and validTill defaults to the enrolment date
// plus the course duration.
func CreateSubscriptionHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	var input SubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.StudentID == 0 || input.CourseID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Student and course are required"})
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
	course, err := ownedCourse(config.DB, input.CourseID, teacherID)
	if err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify course"})
		return
	}

	var count int64
	if err := config.DB.Model(&models.CourseSubscription{}).
		Where("student_id = ? AND course_id = ?", input.StudentID, input.CourseID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify subscription"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Student is already enrolled in this course"})
		return
	}

	enrolledDate := time.Now().UTC()
	if input.EnrolledDate != "" {
		if t, err := time.Parse("2006-01-02", input.EnrolledDate); err == nil {
			enrolledDate = t
		}
	}
	validTill := models.DefaultValidTill(enrolledDate, course.CourseDuration)
	if input.ValidTill != "" {
		if t, err := time.Parse("2006-01-02", input.ValidTill); err == nil {
			validTill = t
		}
	}

	amountPaid := 0.0
	if input.AmountPaid != nil {
		amountPaid = *input.AmountPaid
	}
	if amountPaid < 0 || amountPaid > course.CourseFee {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount paid"})
		return
	}

	subscription := models.CourseSubscription{
		StudentID:     input.StudentID,
		CourseID:      input.CourseID,
		EnrolledDate:  enrolledDate,
		ValidTill:     validTill,
		PaymentStatus: models.DerivePaymentStatus(amountPaid, course.CourseFee),
		AmountPaid:    amountPaid,
		IsActive:      input.IsActive,
	}
	if err := config.DB.Create(&subscription).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	config.DB.Preload("Student.Batch").Preload("Course").First(&subscription, subscription.ID)
	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusCreated, gin.H{"subscription": subscription, "message": "Subscription created successfully"})
}

func ownedSubscription(teacherID, id uint) (*models.CourseSubscription, error) {
	var subscription models.CourseSubscription
	err := config.DB.Model(&models.CourseSubscription{}).
		Scopes(subscriptionScope(teacherID)).
		Where("course_subscriptions.id = ?", id).
		Preload("Course").
		First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotOwned
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// GetSubscriptionHandler returns one owned subscription with joins.
func GetSubscriptionHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	subscription, err := ownedSubscription(teacherID, id)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}

	config.DB.Preload("Student.Batch").First(subscription, subscription.ID)
	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// UpdateSubscriptionHandler applies a partial update, re-deriving the payment
// status whenever the paid amount changes.
func UpdateSubscriptionHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	subscription, err := ownedSubscription(teacherID, id)
	if errors.Is(err, errNotOwned) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}

	var input SubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.EnrolledDate != "" {
		if t, err := time.Parse("2006-01-02", input.EnrolledDate); err == nil {
			subscription.EnrolledDate = t
		}
	}
	if input.ValidTill != "" {
		if t, err := time.Parse("2006-01-02", input.ValidTill); err == nil {
			subscription.ValidTill = t
		}
	}
	if input.AmountPaid != nil {
		if subscription.Course == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve course for subscription"})
			return
		}
		if *input.AmountPaid < 0 || *input.AmountPaid > subscription.Course.CourseFee {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount paid"})
			return
		}
		subscription.AmountPaid = *input.AmountPaid
		subscription.PaymentStatus = models.DerivePaymentStatus(*input.AmountPaid, subscription.Course.CourseFee)
	}
	if input.IsActive != nil {
		subscription.IsActive = input.IsActive
	}

	if err := config.DB.Save(subscription).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}

	config.DB.Preload("Student.Batch").Preload("Course").First(subscription, subscription.ID)
	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"subscription": subscription, "message": "Subscription updated successfully"})
}

// DeleteSubscriptionHandler removes an owned subscription. Unscoped: a
// tombstone would keep the (student_id, course_id) unique index occupied and
// block the student from ever re-enrolling in the course.
func DeleteSubscriptionHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	if _, err := ownedSubscription(teacherID, id); err != nil {
		if errors.Is(err, errNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}

	if err := config.DB.Unscoped().Delete(&models.CourseSubscription{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subscription"})
		return
	}

	invalidateDashboardCache(teacherID)
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted successfully"})
}
