package model

type Room struct {
	DTO
	Name     string `gorm:"not null" json:"name"`
	CinemaId uint   `gorm:"index" json:"cinemaId"`
	Cinema   Cinema `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:CinemaId" json:"-"`

	Seats []Seat `gorm:"foreignKey:RoomId" json:"seats,omitempty"`
}
