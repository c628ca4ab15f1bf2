package handler

import (
	"cinema_booking/model"
	"cinema_booking/utils"

	"github.com/gofiber/fiber/v2"
)

// PaymentCallback nhận kết quả từ dịch vụ thanh toán
func (h *Handler) PaymentCallback(c *fiber.Ctx) error {
	input := c.Locals("input").(model.PaymentCallbackInput)

	var (
		ticket model.Ticket
		err    error
	)
	if input.Success {
		ticket, err = h.Tickets.ConfirmPayment(c.UserContext(), input.TicketId)
	} else {
		ticket, err = h.Tickets.FailPayment(c.UserContext(), input.TicketId)
	}
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, toTicketDetail(ticket))
}
