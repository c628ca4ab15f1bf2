package handler

import (
	"cinema_booking/helper"
	"cinema_booking/model"
	"cinema_booking/service"
	"cinema_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateBookingInput)
	claim := helper.GetClaim(c)

	resp, err := h.Bookings.Book(c.UserContext(), service.BookingRequest{
		CustomerId:    claim.CustomerId,
		ShowtimeId:    input.ShowtimeId,
		SeatIds:       input.SeatIds,
		PromotionCode: input.PromotionCode,
	})
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, resp)
}
