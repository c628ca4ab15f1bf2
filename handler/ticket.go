package handler

import (
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/model"
	"cinema_booking/service"
	"cinema_booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"
)

func toTicketDetail(ticket model.Ticket) model.TicketDetail {
	var detail model.TicketDetail
	if err := copier.Copy(&detail, &ticket); err != nil {
		logrus.WithError(err).Warn("copy ticket detail")
	}
	detail.TicketId = ticket.ID
	if detail.Seats == nil {
		detail.Seats = []model.TicketSeat{}
	}
	return detail
}

func (h *Handler) GetTicket(c *fiber.Ctx) error {
	claim := helper.GetClaim(c)
	ticket, err := h.Tickets.Get(c.UserContext(), c.Params("ticketCode"))
	if err != nil {
		return respondError(c, err)
	}
	// khách chỉ xem được vé của mình, nhân viên xem được mọi vé
	isStaff := claim.AccountId != 0 && utils.IsValidValueOfConstant(claim.Role, constants.STAFF_ROLES)
	if !isStaff && ticket.CustomerId != claim.CustomerId {
		return respondError(c, service.ErrTicketNotFound)
	}

	detail := toTicketDetail(ticket)
	if ticket.Status == constants.TICKET_CONFIRMED {
		qr, err := utils.GenerateQRCodeBase64(ticket.TicketCode, 256)
		if err != nil {
			logrus.WithError(err).WithField("ticketCode", ticket.TicketCode).Warn("Không tạo được QR")
		}
		detail.QRCode = qr
	}
	return utils.SuccessResponse(c, fiber.StatusOK, detail)
}

func (h *Handler) CancelTicket(c *fiber.Ctx) error {
	ticketId := c.Locals("inputId").(uint)
	claim := helper.GetClaim(c)

	ticket, err := h.Tickets.Cancel(c.UserContext(), ticketId, claim.CustomerId)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, toTicketDetail(ticket))
}

func (h *Handler) CheckInTicket(c *fiber.Ctx) error {
	ticket, err := h.Tickets.CheckIn(c.UserContext(), c.Params("ticketCode"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, toTicketDetail(ticket))
}
