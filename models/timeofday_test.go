package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, got.Minutes())
	assert.Equal(t, "09:30", got.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("9:30am")
	assert.Error(t, err)
}

func TestTimeOfDayArithmetic(t *testing.T) {
	nine, err := ParseTimeOfDay("09:00")
	require.NoError(t, err)

	assert.Equal(t, "09:15", nine.Add(15).String())
	assert.True(t, nine.Before(nine.Add(1)))
	assert.True(t, nine.Add(1).After(nine))

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), nine.At(date))
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay

	require.NoError(t, tod.Scan("14:45"))
	assert.Equal(t, "14:45", tod.String())

	require.NoError(t, tod.Scan([]byte("08:05")))
	assert.Equal(t, "08:05", tod.String())

	require.NoError(t, tod.Scan(time.Date(2026, 1, 5, 16, 30, 0, 0, time.UTC)))
	assert.Equal(t, "16:30", tod.String())

	assert.Error(t, tod.Scan(42))
}

func TestTimeOfDayJSON(t *testing.T) {
	tod, err := ParseTimeOfDay("07:05")
	require.NoError(t, err)

	data, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.Equal(t, `"07:05"`, string(data))

	var back TimeOfDay
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tod, back)
}
