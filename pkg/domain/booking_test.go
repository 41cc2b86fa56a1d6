package domain

import (
	"encoding/json"
	"testing"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"string decimal", `"10.50"`, 10.5},
		{"number", `7`, 7},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
			}
			if a.Float() != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, a.Float(), tt.want)
			}
		})
	}
}

func TestAmountUnmarshalRejectsGarbage(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`"ten"`), &a); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestAmountString(t *testing.T) {
	if got := Amount(50).String(); got != "50.00" {
		t.Errorf("Amount(50).String() = %q, want %q", got, "50.00")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel("in_progress"); got != "IN PROGRESS" {
		t.Errorf("StatusLabel(in_progress) = %q", got)
	}
	if got := StatusLabel("pending"); got != "PENDING" {
		t.Errorf("StatusLabel(pending) = %q", got)
	}
}

func TestSummarize(t *testing.T) {
	bookings := []Booking{
		{Status: StatusPending, PaymentStatus: "pending", TotalPrice: 20},
		{Status: StatusAccepted, PaymentStatus: PaymentPaid, TotalPrice: 12.5},
		{Status: StatusInProgress, PaymentStatus: "pending"},
		{Status: StatusCompleted, PaymentStatus: PaymentPaid, TotalPrice: 30},
		{Status: "cancelled", PaymentStatus: "failed", TotalPrice: 99},
	}
	s := Summarize(bookings)
	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Pending != 3 {
		t.Errorf("Pending = %d, want 3", s.Pending)
	}
	if s.Completed != 1 {
		t.Errorf("Completed = %d, want 1", s.Completed)
	}
	if s.TotalSpent.String() != "42.50" {
		t.Errorf("TotalSpent = %s, want 42.50", s.TotalSpent)
	}
}

func TestBookingDecode(t *testing.T) {
	raw := `{
		"id": 9,
		"waste_type": {"id": 2, "name": "Plastic", "price_per_kg": "10.00"},
		"quantity_kg": "5.00",
		"selected_center": {"id": 3, "name": "North Yard", "address": "1 Road", "latitude": "11.87", "longitude": "75.37"},
		"total_price": "50.00",
		"status": "pending",
		"payment_status": "pending",
		"created_at": "2026-01-02T10:00:00Z"
	}`
	var b Booking
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if b.WasteTypeName() != "Plastic" {
		t.Errorf("WasteTypeName() = %q", b.WasteTypeName())
	}
	if b.CenterName() != "North Yard" {
		t.Errorf("CenterName() = %q", b.CenterName())
	}
	if b.SelectedCenter.Location().Lat != 11.87 {
		t.Errorf("center latitude = %v", b.SelectedCenter.Location().Lat)
	}
	if (Booking{}).CenterName() != "Not selected" {
		t.Error("expected 'Not selected' for booking without center")
	}
}

func TestUserAccessors(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"name":"Asha","email":"a@x.io","phone":9876,"custom":true}`), &u); err != nil {
		t.Fatal(err)
	}
	if u.Name() != "Asha" || u.Email() != "a@x.io" {
		t.Errorf("unexpected accessors: %q %q", u.Name(), u.Email())
	}
	if u.Phone() != "9876" {
		t.Errorf("Phone() = %q, want 9876", u.Phone())
	}
	if _, ok := u["custom"]; !ok {
		t.Error("expected unknown server fields to be kept")
	}

	var long User
	if err := json.Unmarshal([]byte(`{"phone":9876543210,"id":1234567,"score":2.5}`), &long); err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]string{"phone": "9876543210", "id": "1234567", "score": "2.5"} {
		if got := long.str(key); got != want {
			t.Errorf("str(%q) = %q, want %q", key, got, want)
		}
	}

	var empty User
	if empty.DisplayName() != "" {
		t.Error("nil user should have empty display name")
	}
}
