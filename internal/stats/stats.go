// stm-dashboard/internal/stats/stats.go

// Package stats computes the teacher dashboard snapshot: overview counts,
// revenue, attendance rate, six-month charts and recent-activity lists.
package stats

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/riajulpro/stm-dashboard/models"

	"gorm.io/gorm"
)

type Overview struct {
	TotalStudents   int64   `json:"totalStudents"`
	TotalBatches    int64   `json:"totalBatches"`
	TotalCourses    int64   `json:"totalCourses"`
	ActiveCourses   int64   `json:"activeCourses"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingPayments float64 `json:"pendingPayments"`
	AttendanceRate  float64 `json:"attendanceRate"`
}

type MonthlyRevenuePoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type MonthlyGrowthPoint struct {
	Month    string `json:"month"`
	Students int64  `json:"students"`
}

type CourseEnrollment struct {
	CourseName  string `json:"courseName"`
	Enrollments int64  `json:"enrollments"`
}

type AttendanceStat struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type Charts struct {
	MonthlyRevenue    []MonthlyRevenuePoint `json:"monthlyRevenue"`
	StudentGrowth     []MonthlyGrowthPoint  `json:"studentGrowth"`
	CourseEnrollments []CourseEnrollment    `json:"courseEnrollments"`
	AttendanceStats   []AttendanceStat      `json:"attendanceStats"`
}

type RecentStudent struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Batch      string    `json:"batch"`
	JoinedDate time.Time `json:"joinedDate"`
	Avatar     string    `json:"avatar"`
}

type TopPerformer struct {
	StudentID    uint   `json:"studentId"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	AverageMarks string `json:"averageMarks"`
}

type RecentFeedback struct {
	ID          uint      `json:"id"`
	StudentName string    `json:"studentName"`
	Feedback    string    `json:"feedback"`
	Rating      *int      `json:"rating"`
	Date        time.Time `json:"date"`
}

type RecentActivities struct {
	RecentStudents  []RecentStudent  `json:"recentStudents"`
	TopPerformers   []TopPerformer   `json:"topPerformers"`
	RecentFeedbacks []RecentFeedback `json:"recentFeedbacks"`
}

type UpcomingClass struct {
	ID         uint            `json:"id"`
	CourseName string          `json:"courseName"`
	BatchName  string          `json:"batchName"`
	Schedule   models.Schedule `json:"schedule"`
}

// Dashboard is the full snapshot returned by /api/dashboard/stats.
type Dashboard struct {
	Overview         Overview         `json:"overview"`
	Charts           Charts           `json:"charts"`
	RecentActivities RecentActivities `json:"recentActivities"`
	UpcomingClasses  []UpcomingClass  `json:"upcomingClasses"`
}

// Empty is the documented all-zero snapshot: every count zero, every
// collection present but empty. The dashboard endpoint serves it instead of
// an error whenever aggregation fails.
func Empty() *Dashboard {
	return &Dashboard{
		Charts: Charts{
			MonthlyRevenue:    []MonthlyRevenuePoint{},
			StudentGrowth:     []MonthlyGrowthPoint{},
			CourseEnrollments: []CourseEnrollment{},
			AttendanceStats:   []AttendanceStat{},
		},
		RecentActivities: RecentActivities{
			RecentStudents:  []RecentStudent{},
			TopPerformers:   []TopPerformer{},
			RecentFeedbacks: []RecentFeedback{},
		},
		UpcomingClasses: []UpcomingClass{},
	}
}

type statusCount struct {
	Status string
	Count  int64
}

type enrollmentCount struct {
	CourseID uint
	Count    int64
}

type performerRow struct {
	StudentID uint
	Avg       float64
}

// Collect runs every independent sub-query concurrently, joins the results
// and composes the snapshot. Any sub-query error aborts the whole
// computation; no partial merging is attempted.
func Collect(db *gorm.DB, teacherID uint, now time.Time) (*Dashboard, error) {
	var (
		totalStudents, totalBatches int64
		totalCourses, activeCourses int64
		totalRevenue                float64
		pendingSubs                 []models.CourseSubscription
		recentStudents              []models.Student
		attendanceCounts            []statusCount
		enrollments                 []enrollmentCount
		revenueRows                 []RevenueRow
		growthTimes                 []time.Time
		performers                  []performerRow
		upcoming                    []models.Routine
		feedbacks                   []models.Feedback
	)

	since30d := now.AddDate(0, 0, -30)
	since6m := now.AddDate(0, -6, 0)

	subQueries := []func() error{
		func() error {
			return db.Model(&models.Student{}).
				Where("teacher_id = ?", teacherID).
				Count(&totalStudents).Error
		},
		func() error {
			return db.Model(&models.Batch{}).
				Where("teacher_id = ?", teacherID).
				Count(&totalBatches).Error
		},
		func() error {
			return db.Model(&models.Course{}).
				Where("teacher_id = ?", teacherID).
				Count(&totalCourses).Error
		},
		func() error {
			return db.Model(&models.Course{}).
				Where("teacher_id = ? AND is_active = ?", teacherID, true).
				Count(&activeCourses).Error
		},
		func() error {
			return db.Model(&models.CourseSubscription{}).
				Select("COALESCE(SUM(course_subscriptions.amount_paid), 0)").
				Joins("JOIN students ON students.id = course_subscriptions.student_id AND students.deleted_at IS NULL").
				Where("students.teacher_id = ?", teacherID).
				Scan(&totalRevenue).Error
		},
		func() error {
			return db.Model(&models.CourseSubscription{}).
				Joins("JOIN students ON students.id = course_subscriptions.student_id AND students.deleted_at IS NULL").
				Where("students.teacher_id = ? AND course_subscriptions.payment_status IN ?",
					teacherID, []string{models.PaymentPending, models.PaymentPartial}).
				Preload("Course").
				Find(&pendingSubs).Error
		},
		func() error {
			return db.Where("teacher_id = ?", teacherID).
				Order("created_at DESC").
				Limit(5).
				Preload("Batch").
				Find(&recentStudents).Error
		},
		func() error {
			return db.Model(&models.Attendance{}).
				Select("attendances.status AS status, COUNT(*) AS count").
				Joins("JOIN students ON students.id = attendances.student_id AND students.deleted_at IS NULL").
				Where("students.teacher_id = ? AND attendances.date >= ?", teacherID, since30d).
				Group("attendances.status").
				Scan(&attendanceCounts).Error
		},
		func() error {
			return db.Model(&models.CourseSubscription{}).
				Select("course_subscriptions.course_id AS course_id, COUNT(*) AS count").
				Joins("JOIN students ON students.id = course_subscriptions.student_id AND students.deleted_at IS NULL").
				Where("students.teacher_id = ? AND course_subscriptions.is_active = ?", teacherID, true).
				Group("course_subscriptions.course_id").
				Scan(&enrollments).Error
		},
		func() error {
			return db.Model(&models.CourseSubscription{}).
				Select("course_subscriptions.enrolled_date AS enrolled_date, course_subscriptions.amount_paid AS amount_paid").
				Joins("JOIN students ON students.id = course_subscriptions.student_id AND students.deleted_at IS NULL").
				Where("students.teacher_id = ? AND course_subscriptions.enrolled_date >= ?", teacherID, since6m).
				Scan(&revenueRows).Error
		},
		func() error {
			return db.Model(&models.Student{}).
				Where("teacher_id = ? AND created_at >= ?", teacherID, since6m).
				Pluck("created_at", &growthTimes).Error
		},
		func() error {
			return db.Model(&models.Result{}).
				Select("results.student_id AS student_id, AVG(results.marks_obtained) AS avg").
				Joins("JOIN students ON students.id = results.student_id AND students.deleted_at IS NULL").
				Where("students.teacher_id = ?", teacherID).
				Group("results.student_id").
				Order("avg DESC").
				Limit(5).
				Scan(&performers).Error
		},
		func() error {
			return db.Model(&models.Routine{}).
				Joins("JOIN batches ON batches.id = routines.batch_id AND batches.deleted_at IS NULL").
				Where("batches.teacher_id = ? AND routines.is_active = ?", teacherID, true).
				Limit(10).
				Preload("Course").
				Preload("Batch").
				Find(&upcoming).Error
		},
		func() error {
			return db.Model(&models.Feedback{}).
				Joins("JOIN students ON students.id = feedbacks.student_id AND students.deleted_at IS NULL").
				Where("students.teacher_id = ?", teacherID).
				Order("feedbacks.feedback_date DESC").
				Limit(5).
				Preload("Student").
				Find(&feedbacks).Error
		},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, q := range subQueries {
		wg.Add(1)
		go func(q func() error) {
			defer wg.Done()
			if err := q(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(q)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	// Second phase: the two joins that depend on group-by output.
	courseTitles, err := courseTitleIndex(db, enrollments)
	if err != nil {
		return nil, err
	}
	topStudents, err := studentIndex(db, performers)
	if err != nil {
		return nil, err
	}

	dash := Empty()
	dash.Overview = Overview{
		TotalStudents:   totalStudents,
		TotalBatches:    totalBatches,
		TotalCourses:    totalCourses,
		ActiveCourses:   activeCourses,
		TotalRevenue:    totalRevenue,
		PendingPayments: pendingAmount(pendingSubs),
		AttendanceRate:  attendanceRate(attendanceCounts),
	}

	dash.Charts.MonthlyRevenue = BucketRevenue(revenueRows, now)
	dash.Charts.StudentGrowth = BucketGrowth(growthTimes, now)
	dash.Charts.AttendanceStats = attendanceChart(attendanceCounts)
	for _, e := range enrollments {
		title, ok := courseTitles[e.CourseID]
		if !ok {
			// Dangling course reference; keep the slice entry visible.
			title = "Unknown"
		}
		dash.Charts.CourseEnrollments = append(dash.Charts.CourseEnrollments, CourseEnrollment{
			CourseName:  title,
			Enrollments: e.Count,
		})
	}

	for _, s := range recentStudents {
		batchName := ""
		if s.Batch != nil {
			batchName = s.Batch.BatchName
		}
		dash.RecentActivities.RecentStudents = append(dash.RecentActivities.RecentStudents, RecentStudent{
			ID:         s.ID,
			Name:       s.Name,
			Batch:      batchName,
			JoinedDate: s.CreatedAt,
			Avatar:     s.Avatar,
		})
	}

	for _, p := range performers {
		tp := TopPerformer{
			StudentID:    p.StudentID,
			Name:         "Unknown",
			AverageMarks: strconv.FormatFloat(p.Avg, 'f', 2, 64),
		}
		if s, ok := topStudents[p.StudentID]; ok {
			tp.Name = s.Name
			tp.Avatar = s.Avatar
		}
		dash.RecentActivities.TopPerformers = append(dash.RecentActivities.TopPerformers, tp)
	}

	for _, f := range feedbacks {
		rf := RecentFeedback{
			ID:       f.ID,
			Feedback: f.Feedback,
			Rating:   f.Rating,
			Date:     f.FeedbackDate,
		}
		if f.Student != nil {
			rf.StudentName = f.Student.Name
		}
		dash.RecentActivities.RecentFeedbacks = append(dash.RecentActivities.RecentFeedbacks, rf)
	}

	for _, r := range upcoming {
		uc := UpcomingClass{ID: r.ID, Schedule: r.Schedule}
		if r.Course != nil {
			uc.CourseName = r.Course.Title
		}
		if r.Batch != nil {
			uc.BatchName = r.Batch.BatchName
		}
		dash.UpcomingClasses = append(dash.UpcomingClasses, uc)
	}

	return dash, nil
}

// pendingAmount sums the outstanding balance over pending/partial
// subscriptions. Subscriptions whose course row is gone contribute nothing.
func pendingAmount(subs []models.CourseSubscription) float64 {
	var total float64
	for _, s := range subs {
		if s.Course == nil {
			continue
		}
		total += s.Course.CourseFee - s.AmountPaid
	}
	return total
}

// attendanceRate is present/total over the 30-day window, in percent with
// one decimal. An empty window yields 0, never NaN.
func attendanceRate(counts []statusCount) float64 {
	var present, total int64
	for _, c := range counts {
		total += c.Count
		if c.Status == models.AttendancePresent {
			present = c.Count
		}
	}
	if total == 0 {
		return 0
	}
	rate := float64(present) / float64(total) * 100
	return math.Round(rate*10) / 10
}

// attendanceChart renders the four fixed status rows, zero-filled.
func attendanceChart(counts []statusCount) []AttendanceStat {
	byStatus := map[string]int64{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	return []AttendanceStat{
		{Status: "Present", Count: byStatus[models.AttendancePresent]},
		{Status: "Absent", Count: byStatus[models.AttendanceAbsent]},
		{Status: "Late", Count: byStatus[models.AttendanceLate]},
		{Status: "Excused", Count: byStatus[models.AttendanceExcused]},
	}
}

func courseTitleIndex(db *gorm.DB, enrollments []enrollmentCount) (map[uint]string, error) {
	titles := make(map[uint]string, len(enrollments))
	if len(enrollments) == 0 {
		return titles, nil
	}
	ids := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	var courses []models.Course
	if err := db.Select("id", "title").Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	for _, c := range courses {
		titles[c.ID] = c.Title
	}
	return titles, nil
}

func studentIndex(db *gorm.DB, performers []performerRow) (map[uint]models.Student, error) {
	students := make(map[uint]models.Student, len(performers))
	if len(performers) == 0 {
		return students, nil
	}
	ids := make([]uint, 0, len(performers))
	for _, p := range performers {
		ids = append(ids, p.StudentID)
	}
	var rows []models.Student
	if err := db.Select("id", "name", "avatar").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		students[s.ID] = s
	}
	return students, nil
}
