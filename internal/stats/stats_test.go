// stm-dashboard/internal/stats/stats_test.go
package stats

import (
	"testing"
	"time"

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

	// A :memory: database exists per connection; a pool of one keeps every
	// query (including the concurrent sub-queries) on the same database.
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
	return db
}

func TestEmptySnapshotShape(t *testing.T) {
	dash := Empty()

	assert.Zero(t, dash.Overview)
	assert.NotNil(t, dash.Charts.MonthlyRevenue)
	assert.NotNil(t, dash.Charts.StudentGrowth)
	assert.NotNil(t, dash.Charts.CourseEnrollments)
	assert.NotNil(t, dash.Charts.AttendanceStats)
	assert.NotNil(t, dash.RecentActivities.RecentStudents)
	assert.NotNil(t, dash.RecentActivities.TopPerformers)
	assert.NotNil(t, dash.RecentActivities.RecentFeedbacks)
	assert.NotNil(t, dash.UpcomingClasses)
	assert.Empty(t, dash.Charts.CourseEnrollments)
}

func TestCollectNewTeacher(t *testing.T) {
	db := testDB(t)

	dash, err := Collect(db, 1, time.Now().UTC())
	require.NoError(t, err)

	assert.Zero(t, dash.Overview.TotalStudents)
	assert.Zero(t, dash.Overview.TotalRevenue)
	assert.Zero(t, dash.Overview.AttendanceRate)

	// Charts are pre-seeded even with no data.
	assert.Len(t, dash.Charts.MonthlyRevenue, 6)
	assert.Len(t, dash.Charts.StudentGrowth, 6)
	assert.Len(t, dash.Charts.AttendanceStats, 4)
	assert.Empty(t, dash.Charts.CourseEnrollments)

	assert.Empty(t, dash.RecentActivities.RecentStudents)
	assert.Empty(t, dash.RecentActivities.TopPerformers)
	assert.Empty(t, dash.RecentActivities.RecentFeedbacks)
	assert.Empty(t, dash.UpcomingClasses)
}

func TestCollectSeededTeacher(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	batch := models.Batch{BatchName: "Morning Batch 1", BatchYear: "2025", TeacherID: 1}
	require.NoError(t, db.Create(&batch).Error)

	math := models.Course{Title: "Mathematics", CourseFee: 1000, CourseDuration: 6, CourseFor: "Class 10", TeacherID: 1}
	require.NoError(t, db.Create(&math).Error)
	inactive := false
	history := models.Course{Title: "History", CourseFee: 500, CourseDuration: 3, CourseFor: "Class 10", IsActive: &inactive, TeacherID: 1}
	require.NoError(t, db.Create(&history).Error)

	newStudent := func(displayID, name string, teacherID uint) models.Student {
		s := models.Student{
			StudentID:       displayID,
			TeacherID:       teacherID,
			Name:            name,
			InstitutionName: "Test School",
			Class:           "10",
			Gender:          "female",
			BatchID:         batch.ID,
		}
		require.NoError(t, db.Create(&s).Error)
		return s
	}
	alice := newStudent("EHA-M1-0001", "Alice", 1)
	bob := newStudent("EHA-M1-0002", "Bob", 1)
	carol := newStudent("EHA-M1-0003", "Carol", 1)
	newStudent("EHA-M1-0001", "Other Teacher Student", 2)

	enroll := func(studentID uint, amountPaid float64) {
		sub := models.CourseSubscription{
			StudentID:     studentID,
			CourseID:      math.ID,
			EnrolledDate:  now,
			ValidTill:     now.AddDate(0, 6, 0),
			PaymentStatus: models.DerivePaymentStatus(amountPaid, math.CourseFee),
			AmountPaid:    amountPaid,
		}
		require.NoError(t, db.Create(&sub).Error)
	}
	enroll(alice.ID, 1000)
	enroll(bob.ID, 400)
	enroll(carol.ID, 0)

	mark := func(studentID uint, daysAgo int, status string) {
		require.NoError(t, db.Create(&models.Attendance{
			StudentID: studentID,
			Date:      models.DayOf(now.AddDate(0, 0, -daysAgo)),
			Status:    status,
		}).Error)
	}
	mark(alice.ID, 1, models.AttendancePresent)
	mark(alice.ID, 2, models.AttendancePresent)
	mark(bob.ID, 1, models.AttendancePresent)
	mark(bob.ID, 2, models.AttendanceAbsent)

	score := func(studentID uint, marks float64) {
		require.NoError(t, db.Create(&models.Result{
			StudentID:     studentID,
			CourseID:      math.ID,
			ExamName:      "Midterm",
			MarksObtained: marks,
			TotalMarks:    100,
			ExamDate:      now.AddDate(0, 0, -5),
		}).Error)
	}
	score(alice.ID, 90)
	score(bob.ID, 80)

	require.NoError(t, db.Create(&models.Feedback{
		StudentID:    alice.ID,
		Feedback:     "Doing great",
		FeedbackDate: now.AddDate(0, 0, -3),
	}).Error)

	require.NoError(t, db.Create(&models.Routine{
		CourseID: math.ID,
		BatchID:  batch.ID,
		Schedule: models.Schedule{{Day: "Monday", StartTime: "18:00", EndTime: "19:30"}},
	}).Error)

	dash, err := Collect(db, 1, now)
	require.NoError(t, err)

	assert.Equal(t, int64(3), dash.Overview.TotalStudents)
	assert.Equal(t, int64(1), dash.Overview.TotalBatches)
	assert.Equal(t, int64(2), dash.Overview.TotalCourses)
	assert.Equal(t, int64(1), dash.Overview.ActiveCourses)
	assert.Equal(t, 1400.0, dash.Overview.TotalRevenue)
	// (1000-400) partial + (1000-0) pending
	assert.Equal(t, 1600.0, dash.Overview.PendingPayments)
	// 3 present / 4 total
	assert.Equal(t, 75.0, dash.Overview.AttendanceRate)

	require.Len(t, dash.Charts.MonthlyRevenue, 6)
	assert.Equal(t, 1400.0, dash.Charts.MonthlyRevenue[5].Revenue)
	require.Len(t, dash.Charts.StudentGrowth, 6)
	assert.Equal(t, int64(3), dash.Charts.StudentGrowth[5].Students)

	require.Len(t, dash.Charts.CourseEnrollments, 1)
	assert.Equal(t, CourseEnrollment{CourseName: "Mathematics", Enrollments: 3}, dash.Charts.CourseEnrollments[0])

	require.Len(t, dash.Charts.AttendanceStats, 4)
	assert.Equal(t, AttendanceStat{Status: "Present", Count: 3}, dash.Charts.AttendanceStats[0])
	assert.Equal(t, AttendanceStat{Status: "Absent", Count: 1}, dash.Charts.AttendanceStats[1])
	assert.Equal(t, AttendanceStat{Status: "Late", Count: 0}, dash.Charts.AttendanceStats[2])

	assert.Len(t, dash.RecentActivities.RecentStudents, 3)

	require.Len(t, dash.RecentActivities.TopPerformers, 2)
	assert.Equal(t, "Alice", dash.RecentActivities.TopPerformers[0].Name)
	assert.Equal(t, "90.00", dash.RecentActivities.TopPerformers[0].AverageMarks)
	assert.Equal(t, "Bob", dash.RecentActivities.TopPerformers[1].Name)

	require.Len(t, dash.RecentActivities.RecentFeedbacks, 1)
	assert.Equal(t, "Alice", dash.RecentActivities.RecentFeedbacks[0].StudentName)

	require.Len(t, dash.UpcomingClasses, 1)
	assert.Equal(t, "Mathematics", dash.UpcomingClasses[0].CourseName)
	assert.Equal(t, "Morning Batch 1", dash.UpcomingClasses[0].BatchName)
}

func TestCollectTopPerformersCappedAtFive(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	batch := models.Batch{BatchName: "SSC 2024", TeacherID: 1}
	require.NoError(t, db.Create(&batch).Error)
	course := models.Course{Title: "Physics", CourseFee: 800, CourseDuration: 4, CourseFor: "SSC", TeacherID: 1}
	require.NoError(t, db.Create(&course).Error)

	for i := 0; i < 7; i++ {
		s := models.Student{
			StudentID:       "EHA-S2024-000" + string(rune('1'+i)),
			TeacherID:       1,
			Name:            "Student",
			InstitutionName: "Test School",
			Class:           "10",
			Gender:          "male",
			BatchID:         batch.ID,
		}
		require.NoError(t, db.Create(&s).Error)
		require.NoError(t, db.Create(&models.Result{
			StudentID:     s.ID,
			CourseID:      course.ID,
			ExamName:      "Final",
			MarksObtained: float64(60 + i*5),
			TotalMarks:    100,
			ExamDate:      now,
		}).Error)
	}

	dash, err := Collect(db, 1, now)
	require.NoError(t, err)

	require.Len(t, dash.RecentActivities.TopPerformers, 5)
	// Highest average first.
	assert.Equal(t, "90.00", dash.RecentActivities.TopPerformers[0].AverageMarks)
	assert.Equal(t, "70.00", dash.RecentActivities.TopPerformers[4].AverageMarks)
}

func TestAttendanceRate(t *testing.T) {
	assert.Zero(t, attendanceRate(nil))
	assert.Equal(t, 100.0, attendanceRate([]statusCount{{Status: "present", Count: 4}}))
	assert.Equal(t, 66.7, attendanceRate([]statusCount{
		{Status: "present", Count: 2},
		{Status: "absent", Count: 1},
	}))
}

func TestPendingAmountSkipsDanglingCourses(t *testing.T) {
	fee := models.Course{CourseFee: 1000}
	subs := []models.CourseSubscription{
		{AmountPaid: 400, Course: &fee},
		{AmountPaid: 100}, // course deleted out from under the subscription
	}
	assert.Equal(t, 600.0, pendingAmount(subs))
}
