package model

import "time"

type Showtime struct {
	DTO
	StartTime time.Time `gorm:"not null;index" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`
	Status    string    `gorm:"size:20;not null;default:'SCHEDULED';index" json:"status"`
	MovieId   uint      `json:"movieId"`
	RoomId    uint      `json:"roomId"`
	Movie     Movie     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:MovieId" json:"movie"`
	Room      Room      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:RoomId" json:"room"`
}

// ShowtimeSeat là trạng thái của một ghế trong một suất chiếu
type ShowtimeSeat struct {
	DTO
	ShowtimeId uint       `gorm:"not null;uniqueIndex:idx_showtime_seat" json:"showtimeId"`
	SeatId     uint       `gorm:"not null;uniqueIndex:idx_showtime_seat" json:"seatId"`
	Status     string     `gorm:"size:20;not null;default:'AVAILABLE';index" json:"status"`
	LeaseId    string     `gorm:"size:36;index" json:"-"`
	HeldBy     string     `gorm:"size:32" json:"heldBy,omitempty"`
	ExpiredAt  *time.Time `json:"expiredAt,omitempty"`
	TicketId   *uint      `gorm:"index" json:"ticketId,omitempty"`

	Seat Seat `gorm:"foreignKey:SeatId" json:"-"`
}

type SeatView struct {
	SeatId    uint       `json:"seatId"`
	Label     string     `json:"label"`
	Row       string     `json:"row"`
	Column    int        `json:"column"`
	SeatType  string     `json:"seatType"`
	Status    string     `json:"status"`
	ExpiredAt *time.Time `json:"expiredAt,omitempty"`
}

type SeatMapResponse struct {
	ShowtimeId uint       `json:"showtimeId"`
	Status     string     `json:"status"`
	StartTime  time.Time  `json:"startTime"`
	Seats      []SeatView `json:"seats"`
}

// SeatEvent được phát qua Redis mỗi khi trạng thái ghế thay đổi
type SeatEvent struct {
	ShowtimeId uint      `json:"showtimeId"`
	SeatIds    []uint    `json:"seatIds"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}
