package service

import (
	"context"
	"time"

	"cinema_booking/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HolidayCalendar chứa các ngày lễ được tính giá cuối tuần.
// Ngày lễ lặp lại so khớp theo tháng-ngày, ngày lễ một lần so khớp cả năm.
type HolidayCalendar struct {
	fixed     map[string]struct{}
	recurring map[string]struct{}
}

func NewHolidayCalendar(holidays []model.Holiday) HolidayCalendar {
	cal := HolidayCalendar{fixed: map[string]struct{}{}, recurring: map[string]struct{}{}}
	for _, h := range holidays {
		if h.IsRecurring {
			cal.recurring[h.Date.Format("01-02")] = struct{}{}
		} else {
			cal.fixed[h.Date.Format("2006-01-02")] = struct{}{}
		}
	}
	return cal
}

func LoadHolidayCalendar(ctx context.Context, db *gorm.DB) (HolidayCalendar, error) {
	var holidays []model.Holiday
	if err := db.WithContext(ctx).Find(&holidays).Error; err != nil {
		return HolidayCalendar{}, persistErr("load holidays", err)
	}
	return NewHolidayCalendar(holidays), nil
}

// LoadPricingCalendar chỉ nạp ngày lễ khi bật phụ thu ngày lễ, mặc định chỉ Thứ Bảy và Chủ Nhật tính giá cuối tuần
func LoadPricingCalendar(ctx context.Context, db *gorm.DB, holidayRate bool) (HolidayCalendar, error) {
	if !holidayRate {
		return NewHolidayCalendar(nil), nil
	}
	return LoadHolidayCalendar(ctx, db)
}

// IsHoliday nhận ngày đã quy đổi về múi giờ rạp
func (h HolidayCalendar) IsHoliday(day time.Time) bool {
	if _, ok := h.fixed[day.Format("2006-01-02")]; ok {
		return true
	}
	_, ok := h.recurring[day.Format("01-02")]
	return ok
}

type PriceQuote struct {
	StartTime  time.Time
	Multiplier float64
	// Location của rạp, nil thì dùng múi giờ mặc định
	Location *time.Location
}

type Pricer struct {
	weekday  decimal.Decimal
	weekend  decimal.Decimal
	location *time.Location
	holidays HolidayCalendar
}

func NewPricer(weekday, weekend float64, location *time.Location, holidays HolidayCalendar) *Pricer {
	if location == nil {
		location = time.UTC
	}
	return &Pricer{
		weekday:  decimal.NewFromFloat(weekday),
		weekend:  decimal.NewFromFloat(weekend),
		location: location,
		holidays: holidays,
	}
}

func (p *Pricer) IsWeekendRate(start time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = p.location
	}
	local := start.In(loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return p.holidays.IsHoliday(local)
}

func (p *Pricer) BasePrice(start time.Time, loc *time.Location) decimal.Decimal {
	if p.IsWeekendRate(start, loc) {
		return p.weekend
	}
	return p.weekday
}

// SeatPrice = giá cơ bản theo ngày × hệ số loại ghế, làm tròn đến đơn vị tiền
func (p *Pricer) SeatPrice(q PriceQuote) decimal.Decimal {
	multiplier := q.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	return p.BasePrice(q.StartTime, q.Location).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(0)
}

// ResolveLocation trả về múi giờ của rạp, fallback về mặc định nếu tên không hợp lệ
func ResolveLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
