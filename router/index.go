package router

import (
	"cinema_booking/constants"
	"cinema_booking/handler"
	"cinema_booking/middleware"
	"cinema_booking/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, secret []byte) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1")
	protected := middleware.Protected(secret)

	showtime := v1.Group("/showtimes")
	showtime.Get("/:showtimeId/seats", validate.GetById("showtimeId"), h.GetSeatMap)
	showtime.Use("/:showtimeId/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}, validate.GetById("showtimeId"))
	showtime.Get("/:showtimeId/ws", websocket.New(h.SeatStream))

	booking := v1.Group("/bookings")
	booking.Post("/", protected, middleware.CustomerOnly(), validate.CreateBooking(), h.CreateBooking)

	promotion := v1.Group("/promotions")
	promotion.Post("/validate", protected, middleware.CustomerOnly(), validate.ValidatePromotion(), h.ValidatePromotion)
	promotion.Post("/sweep", protected, middleware.StaffOnly(), h.RunSweeper)
	promotion.Get("/:code/usage", protected, middleware.StaffOnly(), h.GetPromotionUsage)

	ticket := v1.Group("/tickets")
	ticket.Get("/:ticketCode", protected, h.GetTicket)
	ticket.Post("/:ticketId/cancel", protected, middleware.CustomerOnly(), validate.GetById("ticketId"), h.CancelTicket)
	ticket.Post("/:ticketCode/check-in", protected, middleware.StaffOnly(), h.CheckInTicket)

	payment := v1.Group("/payments")
	payment.Post("/callback", protected, middleware.RequireRole(constants.ROLE_PAYMENT, constants.ROLE_ADMIN), validate.PaymentCallback(), h.PaymentCallback)
}
