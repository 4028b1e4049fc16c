package timenorm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{name: "midnight", input: "00:00", want: 0, ok: true},
		{name: "single digit hour", input: "9:05", want: 545, ok: true},
		{name: "last minute", input: "23:59", want: 1439, ok: true},
		{name: "seconds ignored", input: "19:30:45", want: 1170, ok: true},
		{name: "surrounding spaces", input: " 07:15 ", want: 435, ok: true},
		{name: "hour out of range", input: "24:00", ok: false},
		{name: "minute out of range", input: "12:60", ok: false},
		{name: "single digit minute", input: "12:5", ok: false},
		{name: "no separator", input: "1230", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "noon", ok: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := ParseTimeToMinutes(test.input)
			assert.Equal(t, test.ok, ok)
			if test.ok {
				assert.Equal(t, test.want, got)
			}
		})
	}
}

func TestNormalizeTimeRoundTrip(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			raw := fmt.Sprintf("%02d:%02d", hour, minute)
			once, ok := NormalizeTime(raw)
			require.True(t, ok, raw)
			twice, ok := NormalizeTime(once)
			require.True(t, ok, once)
			assert.Equal(t, raw, once)
			assert.Equal(t, once, twice)
		}
	}

	got, ok := NormalizeTime("7:03:59")
	require.True(t, ok)
	assert.Equal(t, "07:03", got)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "2024-02-29", want: "2024-02-29", ok: true},
		{input: "2024-02-30", ok: false},
		{input: "2023-02-29", ok: false},
		{input: "2024-13-01", ok: false},
		{input: "2024-00-10", ok: false},
		{input: "2024-04-31", ok: false},
		{input: "2024-6-10", ok: false},
		{input: "10/06/2024", ok: false},
		{input: "2024-06-10T00:00:00Z", ok: false},
		{input: " 2024-06-10 ", want: "2024-06-10", ok: true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, ok := NormalizeDate(test.input)
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestDateKey(t *testing.T) {
	key, ok := DateKey("2024-12-25")
	require.True(t, ok)
	assert.Equal(t, 20241225, key)

	earlier, _ := DateKey("2024-01-31")
	later, _ := DateKey("2024-02-01")
	assert.Less(t, earlier, later)

	_, ok = DateKey("2024-02-30")
	assert.False(t, ok)
}

func TestWeekday(t *testing.T) {
	tests := map[string]int{
		"2024-01-07": 0,
		"2024-01-08": 1,
		"2024-06-10": 1,
		"2024-02-29": 4,
		"2023-12-30": 6,
	}
	for input, want := range tests {
		got, ok := Weekday(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	_, ok := Weekday("not-a-date")
	assert.False(t, ok)
}
