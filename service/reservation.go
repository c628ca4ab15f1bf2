package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema_booking/constants"
	"cinema_booking/model"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentPublisher interface {
	PublishPaymentRequest(ctx context.Context, req model.PaymentRequest) error
}

type BookingRequest struct {
	CustomerId    uint
	ShowtimeId    uint
	SeatIds       []uint
	PromotionCode string
}

type bookingState int

const (
	stateRequested bookingState = iota
	stateSeatsHeld
	statePriceComputed
	statePromotionApplied
	stateCommitted
	stateRolledBack
)

func (s bookingState) String() string {
	switch s {
	case stateRequested:
		return "requested"
	case stateSeatsHeld:
		return "seats_held"
	case statePriceComputed:
		return "price_computed"
	case statePromotionApplied:
		return "promotion_applied"
	case stateCommitted:
		return "committed"
	case stateRolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type priceLine struct {
	seat  model.Seat
	price decimal.Decimal
}

// booking là dữ liệu tích luỹ qua các bước của một đơn
type booking struct {
	req      BookingRequest
	showtime model.Showtime
	location *time.Location
	lease    *Lease
	lines    []priceLine
	total    decimal.Decimal
	discount decimal.Decimal
	rule     *PromotionRule
	ticket   model.Ticket
}

type ReservationCoordinator struct {
	db         *gorm.DB
	clock      clockwork.Clock
	index      *SeatIndex
	pricer     *Pricer
	promotions *PromotionValidator
	payments   PaymentPublisher
	log        *logrus.Entry
}

func NewReservationCoordinator(db *gorm.DB, clock clockwork.Clock, index *SeatIndex, pricer *Pricer, promotions *PromotionValidator, payments PaymentPublisher) *ReservationCoordinator {
	return &ReservationCoordinator{
		db:         db,
		clock:      clock,
		index:      index,
		pricer:     pricer,
		promotions: promotions,
		payments:   payments,
		log:        logrus.WithField("component", "reservation"),
	}
}

// Book chạy đơn qua các trạng thái requested → seats_held → price_computed → promotion_applied → committed.
// Mọi lối thoát trước committed đều trả ghế đang giữ.
func (c *ReservationCoordinator) Book(ctx context.Context, req BookingRequest) (model.BookingResponse, error) {
	b := &booking{req: req}
	state := stateRequested

	defer func() {
		if state == stateCommitted || b.lease == nil {
			return
		}
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := c.index.Release(releaseCtx, b.lease); err != nil {
			c.log.WithError(err).WithField("leaseId", b.lease.ID).Error("Không trả được ghế đang giữ")
		}
	}()

	for state != stateCommitted {
		if err := ctx.Err(); err != nil {
			state = stateRolledBack
			return model.BookingResponse{}, err
		}
		next, err := c.step(ctx, b, state)
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"customerId": req.CustomerId,
				"showtimeId": req.ShowtimeId,
				"state":      state.String(),
			}).WithError(err).Info("Đặt vé thất bại")
			state = stateRolledBack
			return model.BookingResponse{}, err
		}
		state = next
	}

	c.afterCommit(ctx, b)
	return bookingResponse(b.ticket), nil
}

func (c *ReservationCoordinator) step(ctx context.Context, b *booking, state bookingState) (bookingState, error) {
	switch state {
	case stateRequested:
		return c.hold(ctx, b)
	case stateSeatsHeld:
		return c.price(ctx, b)
	case statePriceComputed:
		return c.applyPromotion(ctx, b)
	case statePromotionApplied:
		return c.commit(ctx, b)
	}
	return stateRolledBack, fmt.Errorf("unexpected booking state %s", state)
}

func (c *ReservationCoordinator) hold(ctx context.Context, b *booking) (bookingState, error) {
	if len(b.req.SeatIds) == 0 {
		return stateRolledBack, ErrNoSeats
	}
	db := c.db.WithContext(ctx)

	var customer model.Customer
	if err := db.Where("id = ? AND is_active = ?", b.req.CustomerId, true).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stateRolledBack, ErrCustomerNotFound
		}
		return stateRolledBack, persistErr("load customer", err)
	}

	if err := db.Preload("Room.Cinema").First(&b.showtime, b.req.ShowtimeId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stateRolledBack, ErrShowtimeNotFound
		}
		return stateRolledBack, persistErr("load showtime", err)
	}
	if !Bookable(b.showtime, c.clock.Now().UTC()) {
		return stateRolledBack, ErrShowtimeNotBookable
	}
	b.location = ResolveLocation(b.showtime.Room.Cinema.TimeZone, nil)

	lease, err := c.index.TryHold(ctx, b.showtime.ID, b.req.SeatIds, fmt.Sprintf("USER_%d", customer.ID))
	if err != nil {
		return stateRolledBack, err
	}
	b.lease = lease
	return stateSeatsHeld, nil
}

func (c *ReservationCoordinator) price(ctx context.Context, b *booking) (bookingState, error) {
	var seats []model.Seat
	if err := c.db.WithContext(ctx).Preload("SeatType").
		Where("id IN ?", b.lease.SeatIds).
		Order("id").
		Find(&seats).Error; err != nil {
		return stateRolledBack, persistErr("load seats", err)
	}

	b.total = decimal.Zero
	for _, seat := range seats {
		p := c.pricer.SeatPrice(PriceQuote{
			StartTime:  b.showtime.StartTime,
			Multiplier: seat.SeatType.Multiplier(),
			Location:   b.location,
		})
		b.lines = append(b.lines, priceLine{seat: seat, price: p})
		b.total = b.total.Add(p)
	}
	return statePriceComputed, nil
}

func (c *ReservationCoordinator) applyPromotion(ctx context.Context, b *booking) (bookingState, error) {
	b.discount = decimal.Zero
	if NormalizeCode(b.req.PromotionCode) == "" {
		return statePromotionApplied, nil
	}

	rule, err := c.promotions.Validate(ctx, b.req.PromotionCode, b.req.CustomerId, c.bookingContext(b))
	if err != nil {
		return stateRolledBack, err
	}
	b.rule = &rule
	b.discount = ComputeDiscount(rule, b.total)
	return statePromotionApplied, nil
}

func (c *ReservationCoordinator) commit(ctx context.Context, b *booking) (bookingState, error) {
	now := c.clock.Now().UTC()
	b.ticket = model.Ticket{
		TicketCode:     "TKT-" + uuid.New().String()[:10],
		CustomerId:     b.req.CustomerId,
		ShowtimeId:     b.showtime.ID,
		Status:         constants.TICKET_PENDING,
		PaymentStatus:  constants.PAYMENT_UNPAID,
		TotalAmount:    b.total.InexactFloat64(),
		DiscountAmount: b.discount.InexactFloat64(),
		FinalAmount:    b.total.Sub(b.discount).InexactFloat64(),
		BookingTime:    now,
	}
	if b.rule != nil {
		b.ticket.PromotionId = &b.rule.PromotionId
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Seats").Create(&b.ticket).Error; err != nil {
			return persistErr("create ticket", err)
		}
		if err := c.index.Commit(ctx, tx, b.lease, b.ticket.ID); err != nil {
			return err
		}

		seats := make([]model.TicketSeat, len(b.lines))
		for i, line := range b.lines {
			seats[i] = model.TicketSeat{
				TicketId: b.ticket.ID,
				SeatId:   line.seat.ID,
				Label:    SeatLabel(line.seat),
				SeatType: line.seat.SeatType.Type,
				Price:    line.price.InexactFloat64(),
			}
		}
		if err := tx.Create(&seats).Error; err != nil {
			return persistErr("create ticket seats", err)
		}
		b.ticket.Seats = seats

		if b.rule != nil {
			return c.promotions.Redeem(ctx, tx, *b.rule, b.req.CustomerId, b.ticket.ID, b.discount)
		}
		return nil
	})
	if err != nil {
		b.ticket = model.Ticket{}
		return stateRolledBack, keepTyped("commit booking", err)
	}
	return stateCommitted, nil
}

func (c *ReservationCoordinator) afterCommit(ctx context.Context, b *booking) {
	c.index.Announce(ctx, b.showtime.ID, b.lease.SeatIds, constants.SEAT_BOOKED)

	fields := logrus.Fields{
		"ticketId":    b.ticket.ID,
		"ticketCode":  b.ticket.TicketCode,
		"customerId":  b.ticket.CustomerId,
		"finalAmount": b.ticket.FinalAmount,
	}
	c.log.WithFields(fields).Info("Đặt vé thành công")

	if c.payments == nil {
		return
	}
	err := c.payments.PublishPaymentRequest(context.WithoutCancel(ctx), model.PaymentRequest{
		TicketId:    b.ticket.ID,
		TicketCode:  b.ticket.TicketCode,
		CustomerId:  b.ticket.CustomerId,
		FinalAmount: b.ticket.FinalAmount,
		RequestedAt: c.clock.Now().UTC(),
	})
	if err != nil {
		// vé vẫn PENDING, sweeper sẽ huỷ nếu không có thanh toán
		c.log.WithFields(fields).WithError(err).Warn("Không gửi được yêu cầu thanh toán")
	}
}

// Quote tính giá và khuyến mãi cho một nhóm ghế mà không giữ ghế
func (c *ReservationCoordinator) Quote(ctx context.Context, req BookingRequest) (model.PromotionPreview, error) {
	db := c.db.WithContext(ctx)
	b := &booking{req: req}
	if err := db.Preload("Room.Cinema").First(&b.showtime, req.ShowtimeId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PromotionPreview{}, ErrShowtimeNotFound
		}
		return model.PromotionPreview{}, persistErr("load showtime", err)
	}
	b.location = ResolveLocation(b.showtime.Room.Cinema.TimeZone, nil)

	ids := uniqueSorted(req.SeatIds)
	if len(ids) == 0 {
		return model.PromotionPreview{}, ErrNoSeats
	}
	var seats []model.Seat
	if err := db.Preload("SeatType").Where("room_id = ? AND id IN ?", b.showtime.RoomId, ids).Find(&seats).Error; err != nil {
		return model.PromotionPreview{}, persistErr("load seats", err)
	}
	if missing := difference(ids, idsOf(seats)); len(missing) > 0 {
		return model.PromotionPreview{}, &SeatUnavailableError{SeatIds: missing}
	}

	b.total = decimal.Zero
	for _, seat := range seats {
		p := c.pricer.SeatPrice(PriceQuote{StartTime: b.showtime.StartTime, Multiplier: seat.SeatType.Multiplier(), Location: b.location})
		b.lines = append(b.lines, priceLine{seat: seat, price: p})
		b.total = b.total.Add(p)
	}

	rule, err := c.promotions.Validate(ctx, req.PromotionCode, req.CustomerId, c.bookingContext(b))
	if err != nil {
		return model.PromotionPreview{}, err
	}
	discount := ComputeDiscount(rule, b.total)
	return model.PromotionPreview{
		Code:           rule.Code,
		DiscountType:   rule.DiscountType,
		DiscountValue:  rule.DiscountValue.InexactFloat64(),
		TotalAmount:    b.total.InexactFloat64(),
		DiscountAmount: discount.InexactFloat64(),
		FinalAmount:    b.total.Sub(discount).InexactFloat64(),
	}, nil
}

func (c *ReservationCoordinator) bookingContext(b *booking) BookingContext {
	types := make([]string, 0, len(b.lines))
	for _, line := range b.lines {
		types = append(types, line.seat.SeatType.Type)
	}
	return BookingContext{
		CinemaId:   b.showtime.Room.CinemaId,
		MovieId:    b.showtime.MovieId,
		ShowtimeId: b.showtime.ID,
		SeatTypes:  types,
	}
}

// Bookable: suất chiếu còn SCHEDULED và chưa bắt đầu
func Bookable(showtime model.Showtime, now time.Time) bool {
	return showtime.Status == constants.SHOWTIME_SCHEDULED && showtime.StartTime.After(now)
}

func bookingResponse(t model.Ticket) model.BookingResponse {
	return model.BookingResponse{
		TicketId:       t.ID,
		TicketCode:     t.TicketCode,
		ShowtimeId:     t.ShowtimeId,
		TotalAmount:    t.TotalAmount,
		DiscountAmount: t.DiscountAmount,
		FinalAmount:    t.FinalAmount,
		Status:         t.Status,
		PaymentStatus:  t.PaymentStatus,
	}
}

func idsOf(seats []model.Seat) []uint {
	ids := make([]uint, len(seats))
	for i, s := range seats {
		ids[i] = s.ID
	}
	return ids
}
