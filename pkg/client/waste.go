package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/smartwaste/pickup/pkg/domain"
)

// NearestCenterResponse is the nearest-center lookup result.
type NearestCenterResponse struct {
	Center domain.Center `json:"center"`
}

// BookingRequest is the booking form as submitted. QuantityKg is sent as
// typed; the server validates and prices it.
type BookingRequest struct {
	WasteTypeID      int
	QuantityKg       string
	PickupDate       string
	PickupTime       string
	Address          string
	SelectedCenterID int    // zero means no center chosen
	ImagePath        string // empty means no image
}

// Form builds the multipart body for the booking.
func (r BookingRequest) Form() *Form {
	f := NewForm().
		Set("waste_type_id", strconv.Itoa(r.WasteTypeID)).
		Set("quantity_kg", r.QuantityKg).
		Set("pickup_date", r.PickupDate).
		Set("pickup_time", r.PickupTime).
		Set("address", r.Address)
	if r.SelectedCenterID != 0 {
		f.Set("selected_center_id", strconv.Itoa(r.SelectedCenterID))
	}
	if r.ImagePath != "" {
		f.File("waste_image", r.ImagePath)
	}
	return f
}

// ListWasteTypes returns the waste types with their prices.
func (c *Client) ListWasteTypes(ctx context.Context) ([]domain.WasteType, error) {
	var types []domain.WasteType
	if err := c.Get(ctx, "waste/types/", &types); err != nil {
		return nil, fmt.Errorf("client.ListWasteTypes: %w", err)
	}
	return types, nil
}

// ListCenters returns all collection centers.
func (c *Client) ListCenters(ctx context.Context) ([]domain.Center, error) {
	var centers []domain.Center
	if err := c.Get(ctx, "waste/centers/", &centers); err != nil {
		return nil, fmt.Errorf("client.ListCenters: %w", err)
	}
	return centers, nil
}

// NearestCenter asks the server for the center closest to loc.
func (c *Client) NearestCenter(ctx context.Context, loc domain.Coordinate) (*NearestCenterResponse, error) {
	var resp NearestCenterResponse
	if err := c.Post(ctx, "waste/centers/nearest/", loc, &resp); err != nil {
		return nil, fmt.Errorf("client.NearestCenter: %w", err)
	}
	return &resp, nil
}

// CreateBooking submits a booking as multipart form data.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*domain.Booking, error) {
	var b domain.Booking
	if err := c.PostMultipart(ctx, "waste/booking/create/", req.Form(), &b); err != nil {
		return nil, fmt.Errorf("client.CreateBooking: %w", err)
	}
	return &b, nil
}

// BookingHistory returns the user's bookings.
func (c *Client) BookingHistory(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.Get(ctx, "waste/booking/history/", &bookings); err != nil {
		return nil, fmt.Errorf("client.BookingHistory: %w", err)
	}
	return bookings, nil
}

// GetBooking fetches a single booking.
func (c *Client) GetBooking(ctx context.Context, id int) (*domain.Booking, error) {
	var b domain.Booking
	if err := c.Get(ctx, "waste/booking/"+strconv.Itoa(id)+"/", &b); err != nil {
		return nil, fmt.Errorf("client.GetBooking: %w", err)
	}
	return &b, nil
}
