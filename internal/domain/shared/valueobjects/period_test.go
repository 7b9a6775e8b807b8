package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    DurationUnit
		wantErr bool
	}{
		{"", DurationUnitMonth, false},
		{"day", DurationUnitDay, false},
		{"week", DurationUnitWeek, false},
		{"year", DurationUnitYear, false},
		{"fortnight", "", true},
		{"Month", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDurationUnit(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod_AddTo(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   time.Time
	}{
		{Period{10, DurationUnitDay}, time.Date(2026, 1, 25, 10, 0, 0, 0, time.UTC)},
		{Period{2, DurationUnitWeek}, time.Date(2026, 1, 29, 10, 0, 0, 0, time.UTC)},
		{Period{1, DurationUnitMonth}, time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)},
		{Period{1, DurationUnitYear}, time.Date(2027, 1, 15, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.period.Label(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.AddTo(start))
		})
	}
}

func TestNewPeriod_Validation(t *testing.T) {
	_, err := NewPeriod(0, DurationUnitMonth)
	assert.Error(t, err)
	_, err = NewPeriod(1, "decade")
	assert.Error(t, err)

	p, err := NewPeriod(3, DurationUnitMonth)
	require.NoError(t, err)
	assert.Equal(t, "3 months", p.Label())
	assert.True(t, p.Equal(Period{3, DurationUnitMonth}))
	assert.False(t, p.IsZero())
	assert.True(t, Period{}.IsZero())
}
