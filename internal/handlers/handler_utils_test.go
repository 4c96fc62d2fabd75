// stm-dashboard/internal/handlers/handler_utils_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-global DB at a fresh in-memory database.
// Handlers read config.DB directly, so tests swap it per test case.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A :memory: database exists per connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Teacher{},
		&models.Batch{},
		&models.Student{},
		&models.Course{},
		&models.CourseSubscription{},
		&models.Attendance{},
		&models.Routine{},
		&models.Result{},
		&models.Feedback{},
	))

	config.DB = db
	config.RDB = nil
	return db
}

// testContext builds a gin context carrying the authenticated teacher scope
// and an optional JSON body, the way AuthMiddleware would have left it.
func testContext(t *testing.T, method string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, "/", nil)
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, "/", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Set("teacher_id", uint(1))
	return c, w
}
