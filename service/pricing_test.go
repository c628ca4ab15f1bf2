package service

import (
	"context"
	"testing"
	"time"

	"cinema_booking/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricer_SaturdayEveningUsesWeekendPrice(t *testing.T) {
	// Arrange
	p := NewPricer(80000, 120000, ict, NewHolidayCalendar(nil))
	start := time.Date(2026, 10, 17, 19, 0, 0, 0, ict)

	// Act
	price := p.SeatPrice(PriceQuote{StartTime: start, Multiplier: 1})

	// Assert
	assert.Equal(t, "120000", price.String())
}

func TestPricer_WeekdayAndMultiplier(t *testing.T) {
	p := NewPricer(80000, 120000, ict, NewHolidayCalendar(nil))
	wednesday := time.Date(2026, 10, 14, 19, 0, 0, 0, ict)
	sunday := time.Date(2026, 10, 18, 10, 0, 0, 0, ict)

	assert.Equal(t, "80000", p.SeatPrice(PriceQuote{StartTime: wednesday, Multiplier: 1}).String())
	assert.Equal(t, "120000", p.SeatPrice(PriceQuote{StartTime: wednesday, Multiplier: 1.5}).String())
	assert.Equal(t, "180000", p.SeatPrice(PriceQuote{StartTime: sunday, Multiplier: 1.5}).String())
	// 0 được hiểu là 1.0
	assert.Equal(t, "80000", p.SeatPrice(PriceQuote{StartTime: wednesday}).String())
	assert.Equal(t, "106666", p.SeatPrice(PriceQuote{StartTime: wednesday, Multiplier: 1.33333}).String())
}

func TestPricer_UsesVenueCalendarDay(t *testing.T) {
	p := NewPricer(80000, 120000, ict, NewHolidayCalendar(nil))
	// Thứ Sáu 23:30 UTC là sáng Thứ Bảy ở ICT
	fridayUTC := time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)

	assert.True(t, p.IsWeekendRate(fridayUTC, nil))
	assert.False(t, p.IsWeekendRate(fridayUTC, time.UTC))
	assert.Equal(t, "120000", p.SeatPrice(PriceQuote{StartTime: fridayUTC, Multiplier: 1}).String())
	assert.Equal(t, "80000", p.SeatPrice(PriceQuote{StartTime: fridayUTC, Multiplier: 1, Location: time.UTC}).String())
}

func TestPricer_HolidaysUseWeekendPrice(t *testing.T) {
	cal := NewHolidayCalendar([]model.Holiday{
		{Name: "Quốc khánh", Date: time.Date(2020, 9, 2, 0, 0, 0, 0, time.UTC), IsRecurring: true},
		{Name: "Nghỉ bù", Date: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
	})
	p := NewPricer(80000, 120000, ict, cal)

	recurring := time.Date(2026, 9, 2, 19, 0, 0, 0, ict) // Thứ Tư
	fixed := time.Date(2026, 10, 15, 19, 0, 0, 0, ict)
	nextYearFixed := time.Date(2027, 10, 15, 19, 0, 0, 0, ict) // Thứ Sáu, không phải lễ

	assert.Equal(t, "120000", p.SeatPrice(PriceQuote{StartTime: recurring, Multiplier: 1}).String())
	assert.Equal(t, "120000", p.SeatPrice(PriceQuote{StartTime: fixed, Multiplier: 1}).String())
	assert.Equal(t, "80000", p.SeatPrice(PriceQuote{StartTime: nextYearFixed, Multiplier: 1}).String())
}

func TestLoadPricingCalendar_HolidayRateIsOptIn(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&model.Holiday{Name: "Nghỉ bù", Date: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)}).Error)
	thursday := PriceQuote{StartTime: time.Date(2026, 10, 15, 19, 0, 0, 0, ict), Multiplier: 1}

	// Act
	off, err := LoadPricingCalendar(ctx, f.db, false)
	require.NoError(t, err)
	on, err := LoadPricingCalendar(ctx, f.db, true)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "80000", NewPricer(80000, 120000, ict, off).SeatPrice(thursday).String())
	assert.Equal(t, "120000", NewPricer(80000, 120000, ict, on).SeatPrice(thursday).String())
}

func TestResolveLocation_FallsBackOnUnknownZone(t *testing.T) {
	assert.Equal(t, ict, ResolveLocation("Nowhere/Unknown", ict))
	assert.Equal(t, ict, ResolveLocation("", ict))
}
