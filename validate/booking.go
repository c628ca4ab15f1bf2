package validate

import (
	"cinema_booking/model"

	"github.com/gofiber/fiber/v2"
)

func CreateBooking() fiber.Handler {
	return body[model.CreateBookingInput]()
}

func ValidatePromotion() fiber.Handler {
	return body[model.ValidatePromotionInput]()
}

func PaymentCallback() fiber.Handler {
	return body[model.PaymentCallbackInput]()
}
