// stm-dashboard/internal/idgen/idgen_test.go
package idgen

import (
	"fmt"
	"testing"

	"github.com/riajulpro/stm-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A :memory: database exists per connection; keep the pool at one so
	// every query sees the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Student{}))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, teacherID uint, studentID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Student{
		StudentID:       studentID,
		TeacherID:       teacherID,
		Name:            "Test Student",
		InstitutionName: "Test School",
		Class:           "10",
		Gender:          "male",
		BatchID:         1,
	}).Error)
}

func TestBatchShortName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Morning Batch 1", "M1"},
		{"Evening Batch A", "EA"},
		{"SSC 2024", "S2024"},
		{"SSC", "SS"},
		{"HSC", "HS"},
		{"Physics", "PHY"},
		{"Alpha Beta Gamma Delta", "ABG"},
		{"morning-batch-2", "M2"},
		{"Morning_Batch_3", "M3"},
		{"Batch", "BAT"}, // all stopwords: falls back to the raw name
		{"  Spring  Batch  ", "SPR"},
		// Truncation is per character, never mid-rune.
		{"Утро 1", "У1"},
		{"Утренняя Группа", "УГ"},
		{"Физика", "ФИЗ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BatchShortName(tc.name))
		})
	}
}

func TestGenerateFirstID(t *testing.T) {
	db := testDB(t)

	id, err := Generate(db, "Morning Batch 1", 1)
	require.NoError(t, err)
	assert.Equal(t, "EHA-M1-0001", id)
}

func TestGenerateIncrementsSequence(t *testing.T) {
	db := testDB(t)
	seedStudent(t, db, 1, "EHA-M1-0001")
	seedStudent(t, db, 1, "EHA-M1-0002")

	id, err := Generate(db, "Morning Batch 1", 1)
	require.NoError(t, err)
	assert.Equal(t, "EHA-M1-0003", id)
}

func TestGenerateScopedPerTeacher(t *testing.T) {
	db := testDB(t)
	seedStudent(t, db, 1, "EHA-M1-0001")

	// A different teacher starts its own sequence.
	id, err := Generate(db, "Morning Batch 1", 2)
	require.NoError(t, err)
	assert.Equal(t, "EHA-M1-0001", id)
}

func TestGenerateIndependentPrefixes(t *testing.T) {
	db := testDB(t)
	seedStudent(t, db, 1, "EHA-M1-0007")

	id, err := Generate(db, "Evening Batch A", 1)
	require.NoError(t, err)
	assert.Equal(t, "EHA-EA-0001", id)
}

func TestGenerateManualIDsIgnoredWhenUnparseable(t *testing.T) {
	db := testDB(t)
	// A manually assigned ID without a trailing sequence restarts at 1.
	seedStudent(t, db, 1, "EHA-M1-custom")

	_, err := Generate(db, "Morning Batch 1", 1)
	require.NoError(t, err)
}

func TestGenerateWidensPastFourDigits(t *testing.T) {
	db := testDB(t)
	seedStudent(t, db, 1, "EHA-M1-9999")

	id, err := Generate(db, "Morning Batch 1", 1)
	require.NoError(t, err)
	assert.Equal(t, "EHA-M1-10000", id)
}

func TestGenerateReusesIDFreedByDelete(t *testing.T) {
	db := testDB(t)
	seedStudent(t, db, 1, "EHA-M1-0001")
	seedStudent(t, db, 1, "EHA-M1-0002")

	// Deletes are unscoped: a tombstone would keep the display ID occupied in
	// the unique index while staying invisible to the max-scan, so every
	// later allocation for the batch would collide forever.
	require.NoError(t, db.Unscoped().
		Where("teacher_id = ? AND student_id = ?", 1, "EHA-M1-0002").
		Delete(&models.Student{}).Error)

	id, err := Generate(db, "Morning Batch 1", 1)
	require.NoError(t, err)
	assert.Equal(t, "EHA-M1-0002", id)

	// The insert must clear the unique index too.
	seedStudent(t, db, 1, id)
}

func TestGenerateSequenceUnderLoad(t *testing.T) {
	db := testDB(t)

	for i := 1; i <= 12; i++ {
		id, err := Generate(db, "SSC 2024", 1)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("EHA-S2024-%04d", i), id)
		seedStudent(t, db, 1, id)
	}
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, IsValidFormat("EHA-M1-0001"))
	assert.True(t, IsValidFormat("EHA-S2024-0042"))
	assert.True(t, IsValidFormat("EHA-M1-10000"))
	assert.False(t, IsValidFormat("EHA-M1-001"))
	assert.False(t, IsValidFormat("XYZ-M1-0001"))
	assert.False(t, IsValidFormat("EHA-m1-0001"))
	assert.False(t, IsValidFormat("EHA-0001"))
	assert.False(t, IsValidFormat(""))
}

func TestExtractShort(t *testing.T) {
	assert.Equal(t, "M1", ExtractShort("EHA-M1-0001"))
	assert.Equal(t, "S2024", ExtractShort("EHA-S2024-0042"))
	assert.Equal(t, "", ExtractShort("not-an-id"))
}
