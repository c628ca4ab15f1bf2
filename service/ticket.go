package service

import (
	"context"
	"errors"
	"time"

	"cinema_booking/constants"
	"cinema_booking/model"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TicketService struct {
	db         *gorm.DB
	clock      clockwork.Clock
	index      *SeatIndex
	promotions *PromotionValidator
	log        *logrus.Entry
}

func NewTicketService(db *gorm.DB, clock clockwork.Clock, index *SeatIndex, promotions *PromotionValidator) *TicketService {
	return &TicketService{
		db:         db,
		clock:      clock,
		index:      index,
		promotions: promotions,
		log:        logrus.WithField("component", "ticket"),
	}
}

func (s *TicketService) Get(ctx context.Context, ticketCode string) (model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.WithContext(ctx).Preload("Seats").Where("ticket_code = ?", ticketCode).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ticket, ErrTicketNotFound
	}
	return ticket, persistErr("load ticket", err)
}

func (s *TicketService) load(db *gorm.DB, ticketId uint) (model.Ticket, error) {
	var ticket model.Ticket
	err := db.Preload("Showtime").First(&ticket, ticketId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ticket, ErrTicketNotFound
	}
	return ticket, persistErr("load ticket", err)
}

// ConfirmPayment: PENDING/UNPAID → CONFIRMED/PAID, gọi lại với vé đã xác nhận không lỗi
func (s *TicketService) ConfirmPayment(ctx context.Context, ticketId uint) (model.Ticket, error) {
	now := s.clock.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Ticket{}).
			Where("id = ? AND status = ? AND payment_status = ?", ticketId, constants.TICKET_PENDING, constants.PAYMENT_UNPAID).
			Updates(map[string]any{
				"status":         constants.TICKET_CONFIRMED,
				"payment_status": constants.PAYMENT_PAID,
				"paid_at":        now,
			})
		if res.Error != nil {
			return persistErr("confirm ticket", res.Error)
		}
		if res.RowsAffected == 0 {
			ticket, err := s.load(tx, ticketId)
			if err != nil {
				return err
			}
			if ticket.PaymentStatus == constants.PAYMENT_PAID &&
				(ticket.Status == constants.TICKET_CONFIRMED || ticket.Status == constants.TICKET_USED) {
				return nil
			}
			return ErrInvalidTransition
		}
		return s.promotions.Activate(ctx, tx, ticketId)
	})
	if err != nil {
		s.log.WithField("ticketId", ticketId).WithError(err).Warn("Không xác nhận được thanh toán")
		return model.Ticket{}, keepTyped("confirm payment", err)
	}
	return s.load(s.db.WithContext(ctx), ticketId)
}

// FailPayment huỷ vé đang chờ thanh toán, mở bán lại ghế và trả lượt khuyến mãi
func (s *TicketService) FailPayment(ctx context.Context, ticketId uint) (model.Ticket, error) {
	return s.cancelPending(ctx, ticketId, "payment_failed")
}

func (s *TicketService) cancelPending(ctx context.Context, ticketId uint, reason string) (model.Ticket, error) {
	now := s.clock.Now().UTC()
	var released []uint
	var showtimeId uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := s.load(tx, ticketId)
		if err != nil {
			return err
		}
		showtimeId = ticket.ShowtimeId

		res := tx.Model(&model.Ticket{}).
			Where("id = ? AND status = ?", ticketId, constants.TICKET_PENDING).
			Updates(map[string]any{"status": constants.TICKET_CANCELLED, "cancelled_at": now})
		if res.Error != nil {
			return persistErr("cancel ticket", res.Error)
		}
		if res.RowsAffected == 0 {
			if ticket.Status == constants.TICKET_CANCELLED {
				return nil
			}
			return ErrInvalidTransition
		}

		if released, err = s.index.ReleaseTicket(ctx, tx, ticketId); err != nil {
			return err
		}
		return s.promotions.Rollback(ctx, tx, ticketId)
	})
	if err != nil {
		return model.Ticket{}, keepTyped("cancel pending ticket", err)
	}

	s.index.Announce(ctx, showtimeId, released, constants.SEAT_AVAILABLE)
	s.log.WithFields(logrus.Fields{"ticketId": ticketId, "reason": reason, "seats": released}).Info("Đã huỷ vé chờ thanh toán")
	return s.load(s.db.WithContext(ctx), ticketId)
}

// CheckIn: CONFIRMED → USED, chỉ trước khi suất chiếu kết thúc
func (s *TicketService) CheckIn(ctx context.Context, ticketCode string) (model.Ticket, error) {
	now := s.clock.Now().UTC()
	db := s.db.WithContext(ctx)

	var ticket model.Ticket
	if err := db.Preload("Showtime").Where("ticket_code = ?", ticketCode).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ticket, ErrTicketNotFound
		}
		return ticket, persistErr("load ticket", err)
	}
	if !now.Before(ticket.Showtime.EndTime) {
		return ticket, ErrInvalidTransition
	}

	res := db.Model(&model.Ticket{}).
		Where("id = ? AND status = ?", ticket.ID, constants.TICKET_CONFIRMED).
		Updates(map[string]any{"status": constants.TICKET_USED, "used_at": now})
	if res.Error != nil {
		return ticket, persistErr("check in ticket", res.Error)
	}
	if res.RowsAffected == 0 {
		return ticket, ErrInvalidTransition
	}
	return s.load(db, ticket.ID)
}

// Cancel do chủ vé yêu cầu trước giờ chiếu. Vé đã thanh toán được hoàn tiền, lượt khuyến mãi giữ nguyên.
func (s *TicketService) Cancel(ctx context.Context, ticketId, customerId uint) (model.Ticket, error) {
	now := s.clock.Now().UTC()
	ticket, err := s.load(s.db.WithContext(ctx), ticketId)
	if err != nil {
		return ticket, err
	}
	if ticket.CustomerId != customerId {
		return model.Ticket{}, ErrTicketNotFound
	}
	if !now.Before(ticket.Showtime.StartTime) {
		return ticket, ErrInvalidTransition
	}

	switch ticket.Status {
	case constants.TICKET_PENDING:
		return s.cancelPending(ctx, ticketId, "customer_cancelled")
	case constants.TICKET_CONFIRMED:
	default:
		return ticket, ErrInvalidTransition
	}

	var released []uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Ticket{}).
			Where("id = ? AND status = ?", ticketId, constants.TICKET_CONFIRMED).
			Updates(map[string]any{
				"status":         constants.TICKET_CANCELLED,
				"payment_status": constants.PAYMENT_REFUNDED,
				"cancelled_at":   now,
			})
		if res.Error != nil {
			return persistErr("refund ticket", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		var rerr error
		released, rerr = s.index.ReleaseTicket(ctx, tx, ticketId)
		return rerr
	})
	if err != nil {
		return model.Ticket{}, keepTyped("cancel ticket", err)
	}

	s.index.Announce(ctx, ticket.ShowtimeId, released, constants.SEAT_AVAILABLE)
	s.log.WithFields(logrus.Fields{"ticketId": ticketId, "customerId": customerId}).Info("Đã huỷ và hoàn tiền vé")
	return s.load(s.db.WithContext(ctx), ticketId)
}

// ExpirePending huỷ các vé PENDING quá hạn thanh toán, trả về số vé đã huỷ
func (s *TicketService) ExpirePending(ctx context.Context, cutoffAge time.Duration) (int, error) {
	cutoff := s.clock.Now().UTC().Add(-cutoffAge)
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("status = ? AND payment_status = ? AND booking_time < ?", constants.TICKET_PENDING, constants.PAYMENT_UNPAID, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, persistErr("find stale tickets", err)
	}

	expired := 0
	for _, id := range ids {
		if _, err := s.cancelPending(ctx, id, "payment_timeout"); err != nil {
			// vé có thể vừa được thanh toán
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}
