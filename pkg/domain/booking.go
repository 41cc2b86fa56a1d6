package domain

import (
	"strings"
	"time"
)

// Booking status values reported by the API.
const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	PaymentPaid = "paid"
)

// Booking is a pickup request. Price and center are decided by the server.
type Booking struct {
	ID             int        `json:"id"`
	WasteType      *WasteType `json:"waste_type,omitempty"`
	QuantityKg     Amount     `json:"quantity_kg"`
	PickupDate     string     `json:"pickup_date"`
	PickupTime     string     `json:"pickup_time"`
	Address        string     `json:"address"`
	SelectedCenter *Center    `json:"selected_center,omitempty"`
	TotalPrice     Amount     `json:"total_price"`
	Status         string     `json:"status"`
	PaymentStatus  string     `json:"payment_status"`
	WasteImage     string     `json:"waste_image,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// WasteTypeName returns the waste type name or "-".
func (b Booking) WasteTypeName() string {
	if b.WasteType == nil || b.WasteType.Name == "" {
		return "-"
	}
	return b.WasteType.Name
}

// CenterName returns the selected center name or "Not selected".
func (b Booking) CenterName() string {
	if b.SelectedCenter == nil || b.SelectedCenter.Name == "" {
		return "Not selected"
	}
	return b.SelectedCenter.Name
}

// Open reports whether the booking still awaits completion.
func (b Booking) Open() bool {
	switch b.Status {
	case StatusPending, StatusAccepted, StatusInProgress:
		return true
	}
	return false
}

// StatusLabel renders a status like "in_progress" as "IN PROGRESS".
func StatusLabel(status string) string {
	return strings.ToUpper(strings.Replace(status, "_", " ", 1))
}

// BookingStats summarises a booking history.
type BookingStats struct {
	Total      int
	Pending    int
	Completed  int
	TotalSpent Amount
}

// Summarize counts open and completed bookings and sums what has been paid.
func Summarize(bookings []Booking) BookingStats {
	s := BookingStats{Total: len(bookings)}
	for _, b := range bookings {
		if b.Open() {
			s.Pending++
		}
		if b.Status == StatusCompleted {
			s.Completed++
		}
		if b.PaymentStatus == PaymentPaid {
			s.TotalSpent += b.TotalPrice
		}
	}
	return s
}
