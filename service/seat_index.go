package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cinema_booking/constants"
	"cinema_booking/model"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lease đại diện cho nhóm ghế đang được giữ chờ thanh toán
type Lease struct {
	ID         string    `json:"leaseId"`
	ShowtimeId uint      `json:"showtimeId"`
	SeatIds    []uint    `json:"seatIds"`
	HeldBy     string    `json:"heldBy"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type SeatEventPublisher interface {
	PublishSeatEvent(ctx context.Context, ev model.SeatEvent) error
}

type SeatIndex struct {
	db         *gorm.DB
	clock      clockwork.Clock
	holdWindow time.Duration
	publisher  SeatEventPublisher
	log        *logrus.Entry
}

func NewSeatIndex(db *gorm.DB, clock clockwork.Clock, holdWindow time.Duration, publisher SeatEventPublisher) *SeatIndex {
	return &SeatIndex{
		db:         db,
		clock:      clock,
		holdWindow: holdWindow,
		publisher:  publisher,
		log:        logrus.WithField("component", "seat_index"),
	}
}

var errHoldConflict = errors.New("hold conflict")

// TryHold giữ toàn bộ ghế cho một lease mới, hoặc không giữ ghế nào
func (s *SeatIndex) TryHold(ctx context.Context, showtimeId uint, seatIds []uint, heldBy string) (*Lease, error) {
	ids := uniqueSorted(seatIds)
	if len(ids) == 0 {
		return nil, ErrNoSeats
	}

	now := s.clock.Now().UTC()
	lease := &Lease{
		ID:         uuid.NewString(),
		ShowtimeId: showtimeId,
		SeatIds:    ids,
		HeldBy:     heldBy,
		ExpiresAt:  now.Add(s.holdWindow),
	}

	var unavailable []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var showtime model.Showtime
		if err := tx.Select("id", "room_id").First(&showtime, showtimeId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShowtimeNotFound
			}
			return err
		}

		var known []uint
		if err := tx.Model(&model.Seat{}).
			Where("room_id = ? AND id IN ?", showtime.RoomId, ids).
			Pluck("id", &known).Error; err != nil {
			return err
		}
		if missing := difference(ids, known); len(missing) > 0 {
			unavailable = missing
			return errHoldConflict
		}

		if err := ensureAssignments(tx, showtimeId, ids); err != nil {
			return err
		}

		// khoá theo thứ tự seat_id để hai request chồng lấn không deadlock
		var rows []model.ShowtimeSeat
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("showtime_id = ? AND seat_id IN ?", showtimeId, ids).
			Order("seat_id").
			Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			if !isFree(row, now) {
				unavailable = append(unavailable, row.SeatId)
			}
		}
		if len(unavailable) > 0 {
			return errHoldConflict
		}

		res := tx.Model(&model.ShowtimeSeat{}).
			Where("showtime_id = ? AND seat_id IN ?", showtimeId, ids).
			Where("(status = ? OR (status = ? AND expired_at < ?))", constants.SEAT_AVAILABLE, constants.SEAT_HELD, now).
			Updates(map[string]any{
				"status":     constants.SEAT_HELD,
				"lease_id":   lease.ID,
				"held_by":    heldBy,
				"expired_at": lease.ExpiresAt,
				"ticket_id":  nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			var taken []uint
			if err := tx.Model(&model.ShowtimeSeat{}).
				Where("showtime_id = ? AND seat_id IN ? AND (lease_id IS NULL OR lease_id <> ?)", showtimeId, ids, lease.ID).
				Pluck("seat_id", &taken).Error; err != nil {
				return err
			}
			unavailable = taken
			return errHoldConflict
		}
		return nil
	})

	switch {
	case errors.Is(err, errHoldConflict):
		s.log.WithFields(logrus.Fields{
			"showtimeId": showtimeId,
			"seatIds":    unavailable,
			"heldBy":     heldBy,
		}).Info("Ghế không còn trống")
		return nil, &SeatUnavailableError{SeatIds: uniqueSorted(unavailable)}
	case err != nil:
		return nil, keepTyped("hold seats", err)
	}

	s.log.WithFields(logrus.Fields{
		"showtimeId": showtimeId,
		"leaseId":    lease.ID,
		"seatIds":    ids,
		"expiresAt":  lease.ExpiresAt,
	}).Debug("Đã giữ ghế")
	s.Announce(ctx, showtimeId, ids, constants.SEAT_HELD)
	return lease, nil
}

// Commit chuyển ghế của lease sang BOOKED trong transaction của caller
func (s *SeatIndex) Commit(ctx context.Context, tx *gorm.DB, lease *Lease, ticketId uint) error {
	now := s.clock.Now().UTC()
	res := tx.WithContext(ctx).Model(&model.ShowtimeSeat{}).
		Where("lease_id = ? AND status = ? AND expired_at >= ?", lease.ID, constants.SEAT_HELD, now).
		Updates(map[string]any{
			"status":     constants.SEAT_BOOKED,
			"ticket_id":  ticketId,
			"expired_at": nil,
		})
	if res.Error != nil {
		return persistErr("commit seats", res.Error)
	}
	if res.RowsAffected != int64(len(lease.SeatIds)) {
		return ErrLeaseExpired
	}
	return nil
}

// Release trả ghế của lease về AVAILABLE, gọi nhiều lần không lỗi
func (s *SeatIndex) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&model.ShowtimeSeat{}).
		Where("lease_id = ? AND status = ?", lease.ID, constants.SEAT_HELD).
		Updates(freeColumns())
	if res.Error != nil {
		return persistErr("release lease", res.Error)
	}
	if res.RowsAffected > 0 {
		s.Announce(ctx, lease.ShowtimeId, lease.SeatIds, constants.SEAT_AVAILABLE)
	}
	return nil
}

// ReleaseTicket mở bán lại ghế của một vé đã đặt, trả về danh sách ghế được mở
func (s *SeatIndex) ReleaseTicket(ctx context.Context, tx *gorm.DB, ticketId uint) ([]uint, error) {
	var seatIds []uint
	if err := tx.WithContext(ctx).Model(&model.ShowtimeSeat{}).
		Where("ticket_id = ? AND status = ?", ticketId, constants.SEAT_BOOKED).
		Pluck("seat_id", &seatIds).Error; err != nil {
		return nil, persistErr("find ticket seats", err)
	}
	if len(seatIds) == 0 {
		return nil, nil
	}
	if err := tx.WithContext(ctx).Model(&model.ShowtimeSeat{}).
		Where("ticket_id = ? AND status = ?", ticketId, constants.SEAT_BOOKED).
		Updates(freeColumns()).Error; err != nil {
		return nil, persistErr("release ticket seats", err)
	}
	return seatIds, nil
}

// ReclaimExpired thu hồi mọi ghế HELD đã quá hạn
func (s *SeatIndex) ReclaimExpired(ctx context.Context) (int64, error) {
	now := s.clock.Now().UTC()
	var expired []model.ShowtimeSeat
	var reclaimed int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "showtime_id", "seat_id").
			Where("status = ? AND expired_at < ?", constants.SEAT_HELD, now).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		rowIds := make([]uint, len(expired))
		for i, row := range expired {
			rowIds[i] = row.ID
		}
		res := tx.Model(&model.ShowtimeSeat{}).
			Where("id IN ? AND status = ? AND expired_at < ?", rowIds, constants.SEAT_HELD, now).
			Updates(freeColumns())
		reclaimed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, persistErr("reclaim leases", err)
	}

	byShowtime := map[uint][]uint{}
	for _, row := range expired {
		byShowtime[row.ShowtimeId] = append(byShowtime[row.ShowtimeId], row.SeatId)
	}
	for showtimeId, seatIds := range byShowtime {
		s.Announce(ctx, showtimeId, seatIds, constants.SEAT_AVAILABLE)
	}
	return reclaimed, nil
}

// SeatMap trả về toàn bộ ghế của phòng kèm trạng thái hiện tại, ghế giữ quá hạn hiển thị là trống
func (s *SeatIndex) SeatMap(ctx context.Context, showtimeId uint) (model.SeatMapResponse, error) {
	db := s.db.WithContext(ctx)
	var showtime model.Showtime
	if err := db.First(&showtime, showtimeId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.SeatMapResponse{}, ErrShowtimeNotFound
		}
		return model.SeatMapResponse{}, persistErr("load showtime", err)
	}

	var seats []model.Seat
	if err := db.Preload("SeatType").
		Where("room_id = ?", showtime.RoomId).
		Order("\"row\", \"column\"").
		Find(&seats).Error; err != nil {
		return model.SeatMapResponse{}, persistErr("load seats", err)
	}

	var assignments []model.ShowtimeSeat
	if err := db.Where("showtime_id = ?", showtimeId).Find(&assignments).Error; err != nil {
		return model.SeatMapResponse{}, persistErr("load seat assignments", err)
	}
	bySeat := make(map[uint]model.ShowtimeSeat, len(assignments))
	for _, a := range assignments {
		bySeat[a.SeatId] = a
	}

	now := s.clock.Now().UTC()
	resp := model.SeatMapResponse{
		ShowtimeId: showtime.ID,
		Status:     showtime.Status,
		StartTime:  showtime.StartTime,
		Seats:      make([]model.SeatView, 0, len(seats)),
	}
	for _, seat := range seats {
		view := model.SeatView{
			SeatId:   seat.ID,
			Label:    SeatLabel(seat),
			Row:      seat.Row,
			Column:   seat.Column,
			SeatType: seat.SeatType.Type,
			Status:   constants.SEAT_AVAILABLE,
		}
		if a, ok := bySeat[seat.ID]; ok && !isFree(a, now) {
			view.Status = a.Status
			view.ExpiredAt = a.ExpiredAt
		}
		resp.Seats = append(resp.Seats, view)
	}
	return resp, nil
}

// Announce phát sự kiện thay đổi ghế, lỗi chỉ được ghi log
func (s *SeatIndex) Announce(ctx context.Context, showtimeId uint, seatIds []uint, status string) {
	if s.publisher == nil || len(seatIds) == 0 {
		return
	}
	ev := model.SeatEvent{ShowtimeId: showtimeId, SeatIds: seatIds, Status: status, At: s.clock.Now().UTC()}
	if err := s.publisher.PublishSeatEvent(context.WithoutCancel(ctx), ev); err != nil {
		s.log.WithError(err).WithField("showtimeId", showtimeId).Warn("Không phát được sự kiện ghế")
	}
}

func SeatLabel(seat model.Seat) string {
	return fmt.Sprintf("%s%d", seat.Row, seat.Column)
}

// ensureAssignments tạo các dòng ShowtimeSeat còn thiếu, bỏ qua dòng đã có
func ensureAssignments(tx *gorm.DB, showtimeId uint, seatIds []uint) error {
	var existing []uint
	if err := tx.Model(&model.ShowtimeSeat{}).
		Where("showtime_id = ? AND seat_id IN ?", showtimeId, seatIds).
		Pluck("seat_id", &existing).Error; err != nil {
		return err
	}
	missing := difference(seatIds, existing)
	if len(missing) == 0 {
		return nil
	}
	rows := make([]model.ShowtimeSeat, len(missing))
	for i, seatId := range missing {
		rows[i] = model.ShowtimeSeat{ShowtimeId: showtimeId, SeatId: seatId, Status: constants.SEAT_AVAILABLE}
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "showtime_id"}, {Name: "seat_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}

func isFree(row model.ShowtimeSeat, now time.Time) bool {
	switch row.Status {
	case constants.SEAT_AVAILABLE:
		return true
	case constants.SEAT_HELD:
		return row.ExpiredAt != nil && row.ExpiredAt.Before(now)
	}
	return false
}

func freeColumns() map[string]any {
	return map[string]any{
		"status":     constants.SEAT_AVAILABLE,
		"lease_id":   "",
		"held_by":    "",
		"expired_at": nil,
		"ticket_id":  nil,
	}
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// difference trả về các phần tử của a không có trong b
func difference(a, b []uint) []uint {
	in := make(map[uint]struct{}, len(b))
	for _, id := range b {
		in[id] = struct{}{}
	}
	var out []uint
	for _, id := range a {
		if _, ok := in[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
