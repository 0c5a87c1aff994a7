package models

import "time"

// ReservationStatus is the lifecycle state of a reservation. It stays a plain
// string so a permissive status policy can persist values outside the constants.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// KnownStatuses lists the statuses the restaurant works with, in lifecycle order.
var KnownStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelled}

type Reservation struct {
	ID               string            `json:"id" gorm:"primaryKey"`
	Name             string            `json:"name" gorm:"not null"`
	Email            string            `json:"email" gorm:"not null"`
	Phone            string            `json:"phone" gorm:"not null"`
	Date             string            `json:"date" gorm:"not null"`
	Time             string            `json:"time" gorm:"not null"`
	Guests           int               `json:"guests" gorm:"not null"`
	TableNumber      int               `json:"table_number" gorm:"not null"`
	Status           ReservationStatus `json:"status" gorm:"not null;default:'pending';index"`
	ReservationItems []ReservationItem `json:"reservation_items" gorm:"serializer:json;type:text"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ReservationItem is a menu selection attached to a booking. MenuItemID is not
// checked against the menu.
type ReservationItem struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}
