package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

func TestNewPlan_Validation(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		price    int64
		interval Interval
		wantErr  error
	}{
		{name: "valid", title: "Gold", price: 49900, interval: IntervalMonthly},
		{name: "missing title", title: "  ", price: 49900, interval: IntervalMonthly, wantErr: ErrTitleRequired},
		{name: "zero price", title: "Gold", price: 0, interval: IntervalMonthly, wantErr: ErrInvalidPrice},
		{name: "bad interval", title: "Gold", price: 100, interval: Interval("daily"), wantErr: ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(tt.title, "", tt.price, tt.interval, "plan_gold", testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.IsActive())
		})
	}
}

func TestInterval_ExpiryFrom(t *testing.T) {
	tests := []struct {
		interval Interval
		days     int
	}{
		{IntervalWeekly, 7},
		{IntervalMonthly, 30},
		{IntervalQuarterly, 90},
		{IntervalHalfYearly, 180},
		{IntervalYearly, 365},
		{Interval("legacy"), 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			assert.Equal(t, testNow.AddDate(0, 0, tt.days), tt.interval.ExpiryFrom(testNow))
		})
	}
}

func TestParseInterval(t *testing.T) {
	iv, err := ParseInterval("Half_Yearly")
	require.NoError(t, err)
	assert.Equal(t, IntervalHalfYearly, iv)

	iv, err = ParseInterval("semi_annual")
	require.NoError(t, err)
	assert.Equal(t, IntervalHalfYearly, iv)

	_, err = ParseInterval("fortnightly")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestPlan_MatchesAmount(t *testing.T) {
	p, err := NewPlan("Gold", "", 49900, IntervalMonthly, "", testNow)
	require.NoError(t, err)

	assert.True(t, p.MatchesAmount(49900), "minor units")
	assert.True(t, p.MatchesAmount(499), "major units")
	assert.False(t, p.MatchesAmount(50000))
	assert.False(t, p.MatchesAmount(0))
}

func TestPlan_MatchesDescription(t *testing.T) {
	p, err := NewPlan("Gold Monthly", "", 49900, IntervalMonthly, "", testNow)
	require.NoError(t, err)

	assert.True(t, p.MatchesDescription("gold"))
	assert.True(t, p.MatchesDescription("Payment for Gold Monthly plan"))
	assert.False(t, p.MatchesDescription("silver"))
	assert.False(t, p.MatchesDescription(""))
}

func TestPlan_Update_KeepsStateOnError(t *testing.T) {
	p, err := NewPlan("Gold", "desc", 49900, IntervalMonthly, "plan_1", testNow)
	require.NoError(t, err)

	err = p.Update("Gold", "desc", -1, IntervalMonthly, "plan_1", true, testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Equal(t, int64(49900), p.PriceMinor())

	require.NoError(t, p.Update("Gold Plus", "new", 59900, IntervalYearly, "plan_2", false, testNow.Add(time.Hour)))
	assert.Equal(t, "Gold Plus", p.Title())
	assert.Equal(t, IntervalYearly, p.Interval())
	assert.False(t, p.IsActive())
	assert.Equal(t, testNow.Add(time.Hour), p.UpdatedAt())
}

func TestPlan_Deactivate(t *testing.T) {
	p, err := NewPlan("Gold", "", 49900, IntervalMonthly, "", testNow)
	require.NoError(t, err)

	assert.True(t, p.Deactivate(testNow.Add(time.Minute)))
	assert.False(t, p.IsActive())
	assert.Equal(t, testNow.Add(time.Minute), p.UpdatedAt())

	assert.False(t, p.Deactivate(testNow.Add(time.Hour)))
	assert.Equal(t, testNow.Add(time.Minute), p.UpdatedAt())
}
