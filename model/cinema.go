package model

type Cinema struct {
	DTO
	Name     string `gorm:"not null" json:"name"`
	TimeZone string `gorm:"size:64;default:'Asia/Ho_Chi_Minh'" json:"timeZone"`

	Rooms []Room `gorm:"foreignKey:CinemaId" json:"rooms,omitempty"`
}
