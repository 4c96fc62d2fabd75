// stm-dashboard/models/routine_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleValidate(t *testing.T) {
	assert.Error(t, Schedule{}.Validate())
	assert.Error(t, Schedule(nil).Validate())

	valid := Schedule{{Day: "Monday", StartTime: "18:00", EndTime: "19:30"}}
	assert.NoError(t, valid.Validate())

	missing := Schedule{
		{Day: "Monday", StartTime: "18:00", EndTime: "19:30"},
		{Day: "Wednesday", StartTime: "", EndTime: "19:30"},
	}
	assert.Error(t, missing.Validate())
}

func TestScheduleRoundTrip(t *testing.T) {
	in := Schedule{
		{Day: "Monday", StartTime: "18:00", EndTime: "19:30"},
		{Day: "Thursday", StartTime: "10:00", EndTime: "11:00"},
	}

	value, err := in.Value()
	require.NoError(t, err)

	var out Schedule
	require.NoError(t, out.Scan(value))
	assert.Equal(t, in, out)

	// Some drivers hand back a string instead of []byte.
	var fromString Schedule
	require.NoError(t, fromString.Scan(string(value.([]byte))))
	assert.Equal(t, in, fromString)

	var bad Schedule
	assert.Error(t, bad.Scan(42))
}
