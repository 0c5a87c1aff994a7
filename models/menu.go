package models

import "time"

type MenuItem struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description"`
	Price       float64   `json:"price" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null"`
	ImageURL    *string   `json:"image_url"`
	IsSpicy     bool      `json:"is_spicy" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}
