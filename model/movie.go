package model

type Movie struct {
	DTO
	Title    string `gorm:"not null" json:"title"`
	Duration int    `json:"duration"` // phút
}
