package handler

import (
	"cinema_booking/helper"
	"cinema_booking/model"
	"cinema_booking/service"
	"cinema_booking/utils"

	"github.com/gofiber/fiber/v2"
)

// ValidatePromotion xem trước số tiền giảm, không giữ ghế và không ghi lượt dùng
func (h *Handler) ValidatePromotion(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ValidatePromotionInput)
	claim := helper.GetClaim(c)

	preview, err := h.Bookings.Quote(c.UserContext(), service.BookingRequest{
		CustomerId:    claim.CustomerId,
		ShowtimeId:    input.ShowtimeId,
		SeatIds:       input.SeatIds,
		PromotionCode: input.Code,
	})
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, preview)
}

func (h *Handler) GetPromotionUsage(c *fiber.Ctx) error {
	summary, err := h.Promotions.Usage(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

func (h *Handler) RunSweeper(c *fiber.Ctx) error {
	report, err := h.Sweeper.RunOnce(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}
