// stm-dashboard/internal/stats/monthly.go
package stats

import "time"

// MonthLabel renders the calendar bucket key for a timestamp, e.g. "Jan 2025".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// MonthLabels returns the trailing n calendar month labels ending at now,
// oldest first. Buckets are pre-seeded from these so months without activity
// still appear in chart output.
func MonthLabels(now time.Time, n int) []string {
	labels := make([]string, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		labels = append(labels, MonthLabel(first.AddDate(0, -i, 0)))
	}
	return labels
}

// RevenueRow is one subscription sample for the monthly revenue chart.
type RevenueRow struct {
	EnrolledDate time.Time
	AmountPaid   float64
}

// BucketRevenue sums amountPaid into the trailing six month buckets keyed by
// enrolment date. Rows outside the window are dropped.
func BucketRevenue(rows []RevenueRow, now time.Time) []MonthlyRevenuePoint {
	labels := MonthLabels(now, 6)
	sums := make(map[string]float64, len(labels))
	for _, l := range labels {
		sums[l] = 0
	}
	for _, r := range rows {
		l := MonthLabel(r.EnrolledDate)
		if _, ok := sums[l]; ok {
			sums[l] += r.AmountPaid
		}
	}

	points := make([]MonthlyRevenuePoint, 0, len(labels))
	for _, l := range labels {
		points = append(points, MonthlyRevenuePoint{Month: l, Revenue: sums[l]})
	}
	return points
}

// BucketGrowth counts student creation timestamps into the trailing six
// month buckets.
func BucketGrowth(createdAt []time.Time, now time.Time) []MonthlyGrowthPoint {
	labels := MonthLabels(now, 6)
	counts := make(map[string]int64, len(labels))
	for _, l := range labels {
		counts[l] = 0
	}
	for _, t := range createdAt {
		l := MonthLabel(t)
		if _, ok := counts[l]; ok {
			counts[l]++
		}
	}

	points := make([]MonthlyGrowthPoint, 0, len(labels))
	for _, l := range labels {
		points = append(points, MonthlyGrowthPoint{Month: l, Students: counts[l]})
	}
	return points
}
