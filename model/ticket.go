package model

import "time"

type Ticket struct {
	DTO
	TicketCode     string     `gorm:"size:20;uniqueIndex" json:"ticketCode"`
	CustomerId     uint       `gorm:"not null;index" json:"customerId"`
	ShowtimeId     uint       `gorm:"not null;index" json:"showtimeId"`
	Status         string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	PaymentStatus  string     `gorm:"size:20;not null;default:'UNPAID'" json:"paymentStatus"`
	TotalAmount    float64    `gorm:"not null" json:"totalAmount"`
	DiscountAmount float64    `gorm:"not null;default:0" json:"discountAmount"`
	FinalAmount    float64    `gorm:"not null" json:"finalAmount"`
	PromotionId    *uint      `json:"promotionId,omitempty"`
	BookingTime    time.Time  `gorm:"not null" json:"bookingTime"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	UsedAt         *time.Time `json:"usedAt,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`

	Seats    []TicketSeat `gorm:"foreignKey:TicketId" json:"seats,omitempty"`
	Showtime Showtime     `gorm:"foreignKey:ShowtimeId" json:"-"`
	Customer Customer     `gorm:"foreignKey:CustomerId" json:"-"`
}

type TicketSeat struct {
	DTO
	TicketId uint    `gorm:"not null;index" json:"ticketId"`
	SeatId   uint    `gorm:"not null" json:"seatId"`
	Label    string  `gorm:"size:10" json:"label"`
	SeatType string  `gorm:"size:20" json:"seatType"`
	Price    float64 `gorm:"not null" json:"price"`
}

type CreateBookingInput struct {
	ShowtimeId    uint   `json:"showtimeId" validate:"required,gt=0"`
	SeatIds       []uint `json:"seatIds" validate:"required,min=1,max=10,dive,gt=0"`
	PromotionCode string `json:"promotionCode" validate:"omitempty,min=3,max=32"`
}

type BookingResponse struct {
	TicketId       uint    `json:"ticketId"`
	TicketCode     string  `json:"ticketCode"`
	ShowtimeId     uint    `json:"showtimeId"`
	TotalAmount    float64 `json:"totalAmount"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
	Status         string  `json:"status"`
	PaymentStatus  string  `json:"paymentStatus"`
}

type TicketDetail struct {
	BookingResponse
	BookingTime time.Time    `json:"bookingTime"`
	PaidAt      *time.Time   `json:"paidAt,omitempty"`
	UsedAt      *time.Time   `json:"usedAt,omitempty"`
	Seats       []TicketSeat `json:"seats"`
	QRCode      string       `json:"qrCode,omitempty"` // base64 PNG
}

type PaymentCallbackInput struct {
	TicketId uint `json:"ticketId" validate:"required,gt=0"`
	Success  bool `json:"success"`
}

// PaymentRequest là thông điệp gửi sang dịch vụ thanh toán
type PaymentRequest struct {
	TicketId    uint      `json:"ticketId"`
	TicketCode  string    `json:"ticketCode"`
	CustomerId  uint      `json:"customerId"`
	FinalAmount float64   `json:"finalAmount"`
	RequestedAt time.Time `json:"requestedAt"`
}
