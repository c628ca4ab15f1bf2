package handler

import (
	"context"

	"cinema_booking/service"
)

type SeatSubscriber interface {
	Subscribe(ctx context.Context, showtimeId uint) (<-chan []byte, func() error)
}

type Handler struct {
	Bookings   *service.ReservationCoordinator
	Seats      *service.SeatIndex
	Promotions *service.PromotionValidator
	Tickets    *service.TicketService
	Sweeper    *service.Sweeper
	// nil thì websocket chỉ gửi sơ đồ ghế ban đầu
	Subscriber SeatSubscriber
}
