package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	s := Load()

	assert.Equal(t, 5*time.Minute, s.SeatHoldWindow)
	assert.Equal(t, 15*time.Minute, s.PaymentWindow)
	assert.Equal(t, time.Minute, s.PromotionSweepEvery)
	assert.Equal(t, 30*time.Second, s.LeaseReclaimEvery)
	assert.Equal(t, time.Minute, s.PendingTicketSweepEvery)
	assert.False(t, s.HolidayWeekendRate)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SEAT_HOLD_MINUTES", "7")
	t.Setenv("LEASE_RECLAIM_SECONDS", "45")
	t.Setenv("HOLIDAY_WEEKEND_RATE", "true")
	t.Setenv("PRICE_WEEKEND", "not-a-number")

	s := Load()

	assert.Equal(t, 7*time.Minute, s.SeatHoldWindow)
	assert.Equal(t, 45*time.Second, s.LeaseReclaimEvery)
	assert.True(t, s.HolidayWeekendRate)
	assert.Equal(t, float64(120000), s.WeekendPrice)
}
