package handler

import (
	"errors"

	"cinema_booking/constants"
	"cinema_booking/service"
	"cinema_booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError ánh xạ lỗi nghiệp vụ sang HTTP status
func respondError(c *fiber.Ctx, err error) error {
	var (
		seatErr  *service.SeatUnavailableError
		promoErr *service.PromotionInvalidError
		perr     *service.PersistenceError
	)
	switch {
	case errors.As(err, &seatErr):
		return utils.ErrorResponseWith(c, fiber.StatusConflict, constants.SEAT_UNAVAILABLE, err,
			fiber.Map{"code": "seat_unavailable", "seatIds": seatErr.SeatIds})
	case errors.As(err, &promoErr):
		return utils.ErrorResponseWith(c, fiber.StatusUnprocessableEntity, constants.PROMOTION_INVALID, err,
			fiber.Map{"code": "promotion_invalid", "reason": promoErr.Reason})
	case errors.Is(err, service.ErrPromotionRace):
		return utils.ErrorResponseWith(c, fiber.StatusConflict, constants.PROMOTION_UNAVAILABLE, err,
			fiber.Map{"code": "promotion_unavailable"})
	case errors.Is(err, service.ErrLeaseExpired):
		return utils.ErrorResponseWith(c, fiber.StatusConflict, constants.LEASE_EXPIRED, err,
			fiber.Map{"code": "lease_expired"})
	case errors.Is(err, service.ErrShowtimeNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.SHOWTIME_NOT_FOUND, err)
	case errors.Is(err, service.ErrShowtimeNotBookable):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.SHOWTIME_NOT_BOOKABLE, err)
	case errors.Is(err, service.ErrCustomerNotFound):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.CUSTOMER_NOT_FOUND, err)
	case errors.Is(err, service.ErrNoSeats):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
	case errors.Is(err, service.ErrTicketNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.TICKET_NOT_FOUND, err)
	case errors.Is(err, service.ErrPromotionNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.PROMOTION_INVALID, err)
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.TICKET_INVALID_TRANSITION, err)
	case errors.As(err, &perr):
		logrus.WithError(err).WithField("path", c.Path()).Error("persistence failure")
		return utils.ErrorResponseWith(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil,
			fiber.Map{"code": "persistence_failure"})
	}
	logrus.WithError(err).WithField("path", c.Path()).Error("unexpected error")
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil)
}
