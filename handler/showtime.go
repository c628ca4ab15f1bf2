package handler

import (
	"cinema_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetSeatMap(c *fiber.Ctx) error {
	showtimeId := c.Locals("inputId").(uint)

	seatMap, err := h.Seats.SeatMap(c.UserContext(), showtimeId)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, seatMap)
}
