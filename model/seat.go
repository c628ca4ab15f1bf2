package model

type Seat struct {
	DTO
	Row        string   `gorm:"not null" validate:"required" json:"row"`          // e.g., "A", "B"
	Column     int      `gorm:"not null" validate:"required,min=1" json:"column"` // e.g., 1, 2
	RoomId     uint     `gorm:"index" json:"roomId"`
	Room       Room     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SeatTypeId uint     `json:"seatTypeId"`
	SeatType   SeatType `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"seatType"`
}

type SeatType struct {
	DTO
	Type          string  `gorm:"uniqueIndex;not null" validate:"required" json:"type"` // NORMAL VIP COUPLE
	PriceModifier float64 `json:"priceModifier"`
}

// Multiplier trả về hệ số giá, 0 được hiểu là 1.0
func (s SeatType) Multiplier() float64 {
	if s.PriceModifier <= 0 {
		return 1
	}
	return s.PriceModifier
}
