package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cinema_booking/constants"
	"cinema_booking/database"
	"cinema_booking/model"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ict = time.FixedZone("ICT", 7*3600)

// Thứ Tư 2026-10-14 10:00 ICT
var baseNow = time.Date(2026, 10, 14, 3, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu       sync.Mutex
	seats    []model.SeatEvent
	payments []model.PaymentRequest
	failPay  bool
}

func (r *recordingPublisher) PublishSeatEvent(_ context.Context, ev model.SeatEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seats = append(r.seats, ev)
	return nil
}

func (r *recordingPublisher) PublishPaymentRequest(_ context.Context, req model.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPay {
		return fmt.Errorf("broker down")
	}
	r.payments = append(r.payments, req)
	return nil
}

func (r *recordingPublisher) seatEvents() []model.SeatEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SeatEvent(nil), r.seats...)
}

type fixture struct {
	db     *gorm.DB
	clock  *clockwork.FakeClock
	events *recordingPublisher

	index       *SeatIndex
	pricer      *Pricer
	promotions  *PromotionValidator
	tickets     *TicketService
	sweeper     *Sweeper
	coordinator *ReservationCoordinator

	cinema   model.Cinema
	customer model.Customer
	other    model.Customer
	showtime model.Showtime
	normal   []model.Seat // hàng A, 8 ghế
	vip      []model.Seat // hàng B, 2 ghế
	foreign  model.Seat   // ghế của phòng khác
}

// newFixture dùng sqlite trong bộ nhớ với một connection
func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite(fmt.Sprintf("%s_%d", name, time.Now().UnixNano()))
	require.NoError(t, err)
	return newFixtureOn(t, db)
}

// newPooledFixture dùng sqlite trên file với poolSize connection,
// các goroutine trong test tranh nhau khoá của database chứ không xếp hàng chờ connection
func newPooledFixture(t *testing.T, poolSize int) *fixture {
	t.Helper()
	db, err := database.OpenSQLiteFile(filepath.Join(t.TempDir(), "booking.db"), poolSize)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Equal(t, poolSize, sqlDB.Stats().MaxOpenConnections)
	return newFixtureOn(t, db)
}

// race chạy n goroutine cùng xuất phát sau một hàng rào
func race(n int, fn func(i int)) {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:     db,
		clock:  clockwork.NewFakeClockAt(baseNow),
		events: &recordingPublisher{},
	}

	normalType := model.SeatType{Type: "NORMAL", PriceModifier: 1}
	vipType := model.SeatType{Type: "VIP", PriceModifier: 1.5}
	require.NoError(t, db.Create(&normalType).Error)
	require.NoError(t, db.Create(&vipType).Error)

	f.cinema = model.Cinema{Name: "Cinema Test", TimeZone: "Asia/Ho_Chi_Minh"}
	require.NoError(t, db.Create(&f.cinema).Error)
	room := model.Room{Name: "Room 1", CinemaId: f.cinema.ID}
	otherRoom := model.Room{Name: "Room 2", CinemaId: f.cinema.ID}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Create(&otherRoom).Error)

	for col := 1; col <= 8; col++ {
		seat := model.Seat{Row: "A", Column: col, RoomId: room.ID, SeatTypeId: normalType.ID}
		require.NoError(t, db.Create(&seat).Error)
		seat.SeatType = normalType
		f.normal = append(f.normal, seat)
	}
	for col := 1; col <= 2; col++ {
		seat := model.Seat{Row: "B", Column: col, RoomId: room.ID, SeatTypeId: vipType.ID}
		require.NoError(t, db.Create(&seat).Error)
		seat.SeatType = vipType
		f.vip = append(f.vip, seat)
	}
	f.foreign = model.Seat{Row: "Z", Column: 1, RoomId: otherRoom.ID, SeatTypeId: normalType.ID}
	require.NoError(t, db.Create(&f.foreign).Error)

	movie := model.Movie{Title: "Test Movie", Duration: 120}
	require.NoError(t, db.Create(&movie).Error)

	// Thứ Bảy 2026-10-17 19:00 ICT
	start := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	f.showtime = model.Showtime{
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    constants.SHOWTIME_SCHEDULED,
		MovieId:   movie.ID,
		RoomId:    room.ID,
	}
	require.NoError(t, db.Create(&f.showtime).Error)

	f.customer = model.Customer{Email: "a@test.local", Phone: "0901", UserName: "alice", IsActive: true}
	f.other = model.Customer{Email: "b@test.local", Phone: "0902", UserName: "bob", IsActive: true}
	require.NoError(t, db.Create(&f.customer).Error)
	require.NoError(t, db.Create(&f.other).Error)

	f.index = NewSeatIndex(db, f.clock, 5*time.Minute, f.events)
	f.pricer = NewPricer(80000, 120000, ict, NewHolidayCalendar(nil))
	f.promotions = NewPromotionValidator(db, f.clock)
	f.tickets = NewTicketService(db, f.clock, f.index, f.promotions)
	f.sweeper = NewSweeper(db, f.clock, f.index, f.tickets, 15*time.Minute)
	f.coordinator = NewReservationCoordinator(db, f.clock, f.index, f.pricer, f.promotions, f.events)
	return f
}

func (f *fixture) newCustomer(t *testing.T, n int) model.Customer {
	t.Helper()
	c := model.Customer{
		Email:    fmt.Sprintf("user%d@test.local", n),
		Phone:    fmt.Sprintf("09%08d", n),
		UserName: fmt.Sprintf("user%d", n),
		IsActive: true,
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) addPromotion(t *testing.T, p model.Promotion) model.Promotion {
	t.Helper()
	if p.Name == "" {
		p.Name = p.Code
	}
	if p.Status == "" {
		p.Status = constants.PROMOTION_ACTIVE
	}
	if p.StartDate.IsZero() {
		p.StartDate = baseNow.Add(-24 * time.Hour)
	}
	if p.EndDate.IsZero() {
		p.EndDate = baseNow.Add(30 * 24 * time.Hour)
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) seatStatus(t *testing.T, seatId uint) string {
	t.Helper()
	var row model.ShowtimeSeat
	err := f.db.Where("showtime_id = ? AND seat_id = ?", f.showtime.ID, seatId).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return constants.SEAT_AVAILABLE
	}
	require.NoError(t, err)
	return row.Status
}

func (f *fixture) reload(t *testing.T, p model.Promotion) model.Promotion {
	t.Helper()
	var out model.Promotion
	require.NoError(t, f.db.First(&out, p.ID).Error)
	return out
}

func pick(seats ...model.Seat) []uint {
	return idsOf(seats)
}
