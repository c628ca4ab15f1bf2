package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPromotionRace       = errors.New("promotion became unavailable while committing the booking")
	ErrLeaseExpired        = errors.New("seat lease expired before commit")
	ErrShowtimeNotFound    = errors.New("showtime not found")
	ErrShowtimeNotBookable = errors.New("showtime is not open for booking")
	ErrCustomerNotFound    = errors.New("customer not found or inactive")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrPromotionNotFound   = errors.New("promotion not found")
	ErrInvalidTransition   = errors.New("ticket state does not allow this operation")
	ErrNoSeats             = errors.New("no seats requested")
)

// SeatUnavailableError liệt kê các ghế đã bị giữ, đã bán hoặc không thuộc phòng chiếu
type SeatUnavailableError struct {
	SeatIds []uint
}

func (e *SeatUnavailableError) Error() string {
	ids := make([]string, len(e.SeatIds))
	for i, id := range e.SeatIds {
		ids[i] = fmt.Sprint(id)
	}
	return "seats unavailable: " + strings.Join(ids, ",")
}

type RejectionReason string

const (
	ReasonNotFound         RejectionReason = "not_found"
	ReasonExpired          RejectionReason = "expired"
	ReasonGlobalCapReached RejectionReason = "global_cap_reached"
	ReasonUserCapReached   RejectionReason = "user_cap_reached"
	ReasonNotApplicable    RejectionReason = "not_applicable"
)

type PromotionInvalidError struct {
	Code   string
	Reason RejectionReason
}

func (e *PromotionInvalidError) Error() string {
	return fmt.Sprintf("promotion %q rejected: %s", e.Code, e.Reason)
}

// PersistenceError bọc lỗi từ tầng lưu trữ
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// keepTyped trả nguyên lỗi nghiệp vụ, các lỗi còn lại được bọc thành PersistenceError
func keepTyped(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		seatErr  *SeatUnavailableError
		promoErr *PromotionInvalidError
		perr     *PersistenceError
	)
	switch {
	case errors.As(err, &seatErr), errors.As(err, &promoErr), errors.As(err, &perr):
		return err
	case errors.Is(err, ErrPromotionRace), errors.Is(err, ErrLeaseExpired),
		errors.Is(err, ErrShowtimeNotFound), errors.Is(err, ErrShowtimeNotBookable),
		errors.Is(err, ErrCustomerNotFound), errors.Is(err, ErrTicketNotFound),
		errors.Is(err, ErrPromotionNotFound), errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNoSeats):
		return err
	}
	return persistErr(op, err)
}
