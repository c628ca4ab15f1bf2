package handler

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SeatStream gửi sơ đồ ghế ban đầu rồi chuyển tiếp mọi thay đổi ghế của suất chiếu
func (h *Handler) SeatStream(c *websocket.Conn) {
	showtimeId, _ := c.Locals("inputId").(uint)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer c.Close()

	seatMap, err := h.Seats.SeatMap(ctx, showtimeId)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"message": "Không tải được sơ đồ ghế", "error": err.Error()})
		return
	}
	if err := c.WriteJSON(seatMap); err != nil {
		return
	}

	// client đóng kết nối thì huỷ subscription
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if h.Subscriber == nil {
		<-ctx.Done()
		return
	}
	messages, closeSub := h.Subscriber.Subscribe(ctx, showtimeId)
	defer func() {
		if err := closeSub(); err != nil {
			logrus.WithError(err).Debug("đóng subscription lỗi")
		}
	}()

	for payload := range messages {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
