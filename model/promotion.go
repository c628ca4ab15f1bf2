package model

import "time"

type Promotion struct {
	DTO
	Code            string    `gorm:"uniqueIndex;not null" json:"code"`
	Name            string    `gorm:"not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	DiscountType    string    `gorm:"not null" json:"discountType"` // PERCENTAGE, FIXED
	DiscountValue   float64   `gorm:"type:decimal(12,2);not null" json:"discountValue"`
	MaxDiscount     float64   `gorm:"type:decimal(12,2);default:0" json:"maxDiscount"`
	StartDate       time.Time `gorm:"not null" json:"startDate"`
	EndDate         time.Time `gorm:"not null" json:"endDate"`
	MaxUsage        int       `gorm:"default:0" json:"maxUsage"`
	MaxUsagePerUser int       `gorm:"default:0" json:"maxUsagePerUser"`
	UsageCount      int       `gorm:"not null;default:0" json:"usageCount"`
	Status          string    `gorm:"size:20;default:'ACTIVE';not null;index" json:"status"`

	CinemaId   *uint                `json:"cinemaId,omitempty"`
	Conditions []PromotionCondition `gorm:"foreignKey:PromotionId" json:"conditions,omitempty"`
}

type PromotionCondition struct {
	DTO
	ConditionType  string `gorm:"not null" json:"conditionType"` // movie, seat_type, showtime
	ConditionValue string `gorm:"not null" json:"conditionValue"`
	PromotionId    uint   `gorm:"not null;index" json:"promotionId"`
}

type PromotionUsage struct {
	DTO
	PromotionId     uint       `gorm:"not null;uniqueIndex:idx_promotion_ticket" json:"promotionId"`
	TicketId        uint       `gorm:"not null;uniqueIndex:idx_promotion_ticket" json:"ticketId"`
	CustomerId      uint       `gorm:"not null;index" json:"customerId"`
	DiscountApplied float64    `gorm:"type:decimal(12,2);not null" json:"discountApplied"`
	UsedAt          time.Time  `gorm:"not null" json:"usedAt"`
	Activated       bool       `gorm:"not null;default:false" json:"activated"`
	ActivatedAt     *time.Time `json:"activatedAt,omitempty"`
}

type ValidatePromotionInput struct {
	Code       string `json:"code" validate:"required,min=3,max=32"`
	ShowtimeId uint   `json:"showtimeId" validate:"required,gt=0"`
	SeatIds    []uint `json:"seatIds" validate:"required,min=1,max=10,dive,gt=0"`
}

type PromotionPreview struct {
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountValue  float64 `json:"discountValue"`
	TotalAmount    float64 `json:"totalAmount"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
}

type PromotionUsageSummary struct {
	Code      string `json:"code"`
	Status    string `json:"status"`
	MaxUsage  int    `json:"maxUsage"`
	Total     int64  `json:"total"`
	Activated int64  `json:"activated"`
}
