package event

import (
	"context"

	"cinema_booking/model"

	"github.com/sirupsen/logrus"
)

// LogPublisher chỉ ghi log, dùng khi chạy local không có Redis hoặc RabbitMQ
type LogPublisher struct{}

func (LogPublisher) PublishSeatEvent(_ context.Context, ev model.SeatEvent) error {
	logrus.WithFields(logrus.Fields{
		"showtimeId": ev.ShowtimeId,
		"seatIds":    ev.SeatIds,
		"status":     ev.Status,
	}).Debug("seat event")
	return nil
}

func (LogPublisher) PublishPaymentRequest(_ context.Context, req model.PaymentRequest) error {
	logrus.WithFields(logrus.Fields{
		"ticketId":    req.TicketId,
		"finalAmount": req.FinalAmount,
	}).Info("payment request")
	return nil
}
