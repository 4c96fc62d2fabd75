// stm-dashboard/internal/stats/monthly_test.go
package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Jun 2025", MonthLabel(fixedNow))
	assert.Equal(t, "Jan 2025", MonthLabel(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonthLabelsOldestFirst(t *testing.T) {
	labels := MonthLabels(fixedNow, 6)
	assert.Equal(t, []string{"Jan 2025", "Feb 2025", "Mar 2025", "Apr 2025", "May 2025", "Jun 2025"}, labels)
}

func TestMonthLabelsCrossYear(t *testing.T) {
	now := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	labels := MonthLabels(now, 6)
	assert.Equal(t, []string{"Sep 2024", "Oct 2024", "Nov 2024", "Dec 2024", "Jan 2025", "Feb 2025"}, labels)
}

func TestBucketRevenueEmpty(t *testing.T) {
	points := BucketRevenue(nil, fixedNow)
	require.Len(t, points, 6)
	for _, p := range points {
		assert.Zero(t, p.Revenue)
	}
	assert.Equal(t, "Jan 2025", points[0].Month)
	assert.Equal(t, "Jun 2025", points[5].Month)
}

func TestBucketRevenueSparse(t *testing.T) {
	rows := []RevenueRow{
		{EnrolledDate: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), AmountPaid: 100},
		{EnrolledDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), AmountPaid: 50},
		{EnrolledDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), AmountPaid: 25},
		// Outside the window: dropped.
		{EnrolledDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), AmountPaid: 999},
	}

	points := BucketRevenue(rows, fixedNow)
	require.Len(t, points, 6)
	assert.Equal(t, MonthlyRevenuePoint{Month: "Mar 2025", Revenue: 150}, points[2])
	assert.Equal(t, MonthlyRevenuePoint{Month: "Jun 2025", Revenue: 25}, points[5])
	assert.Zero(t, points[0].Revenue)
}

func TestBucketGrowth(t *testing.T) {
	createdAt := []time.Time{
		time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC), // dropped
	}

	points := BucketGrowth(createdAt, fixedNow)
	require.Len(t, points, 6)
	assert.Equal(t, MonthlyGrowthPoint{Month: "Jan 2025", Students: 2}, points[0])
	assert.Equal(t, MonthlyGrowthPoint{Month: "Jun 2025", Students: 1}, points[5])
	assert.Zero(t, points[1].Students)
}
