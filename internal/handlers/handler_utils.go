// stm-dashboard/internal/handlers/handler_utils.go
package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errNotOwned covers both "row does not exist" and "row belongs to another
// teacher" — callers answer 404 for either, never revealing which.
var errNotOwned = errors.New("record not found")

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// ownedBatch loads a batch within the teacher scope.
func ownedBatch(db *gorm.DB, batchID, teacherID uint) (*models.Batch, error) {
	var batch models.Batch
	err := db.Where("id = ? AND teacher_id = ?", batchID, teacherID).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotOwned
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// ownedStudent loads a student within the teacher scope.
func ownedStudent(db *gorm.DB, studentID, teacherID uint) (*models.Student, error) {
	var student models.Student
	err := db.Where("id = ? AND teacher_id = ?", studentID, teacherID).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotOwned
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ownedCourse loads a course within the teacher scope.
func ownedCourse(db *gorm.DB, courseID, teacherID uint) (*models.Course, error) {
	var course models.Course
	err := db.Where("id = ? AND teacher_id = ?", courseID, teacherID).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotOwned
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// saveUploadedFile stores a multipart upload under destDir with a random
// name and returns the public URL path.
func saveUploadedFile(c *gin.Context, destDir, formField string) (string, error) {
	file, err := c.FormFile(formField)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	newFileName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	dst := filepath.Join(destDir, newFileName)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}

	return "/" + filepath.ToSlash(dst), nil
}

// invalidateDashboardCache drops the cached snapshot after any mutation that
// feeds the dashboard.
func invalidateDashboardCache(teacherID uint) {
	if config.RDB == nil {
		return
	}
	config.RDB.Del(config.Ctx, dashboardCacheKey(teacherID))
}
