package model

type Customer struct {
	DTO
	Email    string `gorm:"unique;not null" json:"email"`
	Phone    string `gorm:"not null" json:"phone"`
	UserName string `json:"username"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}
