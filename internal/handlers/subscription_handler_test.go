// stm-dashboard/internal/handlers/subscription_handler_test.go
package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedEnrollmentFixtures(t *testing.T) (*gorm.DB, models.Student, models.Course) {
	t.Helper()
	db := setupTestDB(t)

	batch := models.Batch{BatchName: "Morning Batch 1", TeacherID: 1}
	require.NoError(t, db.Create(&batch).Error)

	student := models.Student{
		StudentID:       "EHA-M1-0001",
		TeacherID:       1,
		Name:            "Alice",
		InstitutionName: "Test School",
		Class:           "10",
		Gender:          "female",
		BatchID:         batch.ID,
	}
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{Title: "Mathematics", CourseFee: 1000, CourseDuration: 6, CourseFor: "Class 10", TeacherID: 1}
	require.NoError(t, db.Create(&course).Error)

	return db, student, course
}

func TestDeleteSubscriptionAllowsReenrollment(t *testing.T) {
	db, student, course := seedEnrollmentFixtures(t)

	enrollment := gin.H{"studentId": student.ID, "courseId": course.ID, "amountPaid": 400}

	c, w := testContext(t, http.MethodPost, enrollment)
	CreateSubscriptionHandler(c)
	require.Equal(t, http.StatusCreated, w.Code)

	// A second enrollment while the first is live is rejected.
	c, w = testContext(t, http.MethodPost, enrollment)
	CreateSubscriptionHandler(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var sub models.CourseSubscription
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&sub).Error)

	c, w = testContext(t, http.MethodDelete, nil)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(sub.ID)}}
	DeleteSubscriptionHandler(c)
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting must free the (student, course) pair: a tombstone left in the
	// unique index would pass the duplicate check and then fail the insert,
	// locking the student out of the course for good.
	c, w = testContext(t, http.MethodPost, enrollment)
	CreateSubscriptionHandler(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	var reenrolled models.CourseSubscription
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&reenrolled).Error)
	assert.Equal(t, models.PaymentPartial, reenrolled.PaymentStatus)
}
