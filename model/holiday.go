package model

import "time"

type Holiday struct {
	DTO
	Name        string    `gorm:"size:100;not null" json:"name"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	IsRecurring bool      `gorm:"not null;default:false" json:"isRecurring"`
}
