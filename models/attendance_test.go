// stm-dashboard/models/attendance_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidAttendanceStatus(t *testing.T) {
	for _, s := range []string{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused} {
		assert.True(t, ValidAttendanceStatus(s), s)
	}
	assert.False(t, ValidAttendanceStatus(""))
	assert.False(t, ValidAttendanceStatus("Present"))
	assert.False(t, ValidAttendanceStatus("sick"))
}

func TestDayOf(t *testing.T) {
	in := time.Date(2025, time.March, 10, 23, 45, 12, 999, time.FixedZone("BST", 6*3600))
	got := DayOf(in)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), got)

	// Already-normalized input is a fixed point.
	assert.Equal(t, got, DayOf(got))
}
