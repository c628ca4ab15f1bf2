package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SweepReport struct {
	PromotionsExpired int64 `json:"promotionsExpired"`
	LeasesReclaimed   int64 `json:"leasesReclaimed"`
	TicketsExpired    int   `json:"ticketsExpired"`
}

// Sweeper dọn các trạng thái có hạn: mã khuyến mãi, ghế đang giữ, vé chờ thanh toán
type Sweeper struct {
	db            *gorm.DB
	clock         clockwork.Clock
	index         *SeatIndex
	tickets       *TicketService
	paymentWindow time.Duration
	log           *logrus.Entry
}

func NewSweeper(db *gorm.DB, clock clockwork.Clock, index *SeatIndex, tickets *TicketService, paymentWindow time.Duration) *Sweeper {
	return &Sweeper{
		db:            db,
		clock:         clock,
		index:         index,
		tickets:       tickets,
		paymentWindow: paymentWindow,
		log:           logrus.WithField("component", "sweeper"),
	}
}

func (s *Sweeper) ExpirePromotions(ctx context.Context) (int64, error) {
	n, err := expirePromotions(s.db.WithContext(ctx), s.clock.Now().UTC(), "")
	if err != nil {
		s.log.WithError(err).Error("Lỗi cập nhật mã khuyến mãi hết hạn")
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("Đã chuyển mã khuyến mãi sang EXPIRED")
	}
	return n, nil
}

func (s *Sweeper) ReclaimLeases(ctx context.Context) (int64, error) {
	n, err := s.index.ReclaimExpired(ctx)
	if err != nil {
		s.log.WithError(err).Error("Lỗi thu hồi ghế giữ quá hạn")
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("Đã thu hồi ghế giữ quá hạn")
	}
	return n, nil
}

func (s *Sweeper) ExpirePendingTickets(ctx context.Context) (int, error) {
	n, err := s.tickets.ExpirePending(ctx, s.paymentWindow)
	if err != nil {
		s.log.WithError(err).Error("Lỗi huỷ vé quá hạn thanh toán")
		return n, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("Đã huỷ vé quá hạn thanh toán")
	}
	return n, nil
}

// RunOnce chạy cả ba bước, bước lỗi không chặn các bước sau
func (s *Sweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	var (
		report   SweepReport
		firstErr error
	)
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var err error
	report.PromotionsExpired, err = s.ExpirePromotions(ctx)
	keep(err)
	report.LeasesReclaimed, err = s.ReclaimLeases(ctx)
	keep(err)
	report.TicketsExpired, err = s.ExpirePendingTickets(ctx)
	keep(err)
	return report, firstErr
}
