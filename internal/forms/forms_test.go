package forms

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwaste/pickup/pkg/domain"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return NewWithClock(func() time.Time { return fixedNow })
}

func validBooking() Booking {
	return Booking{
		WasteTypeID: 2,
		Quantity:    "5",
		PickupDate:  "2026-03-10",
		PickupTime:  "09:30",
		Address:     "12 Market Road",
	}
}

func TestCheckBooking(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		name    string
		mutate  func(*Booking)
		field   string
		wantErr bool
	}{
		{"valid today", func(*Booking) {}, "", false},
		{"valid future", func(b *Booking) { b.PickupDate = "2027-01-01" }, "", false},
		{"minimum quantity", func(b *Booking) { b.Quantity = "0.01" }, "", false},
		{"no waste type", func(b *Booking) { b.WasteTypeID = 0 }, "waste type", true},
		{"quantity too small", func(b *Booking) { b.Quantity = "0.001" }, "quantity", true},
		{"quantity not a number", func(b *Booking) { b.Quantity = "lots" }, "quantity", true},
		{"quantity missing", func(b *Booking) { b.Quantity = "" }, "quantity", true},
		{"date in past", func(b *Booking) { b.PickupDate = "2026-03-09" }, "pickup date", true},
		{"date bad format", func(b *Booking) { b.PickupDate = "10/03/2026" }, "pickup date", true},
		{"time bad format", func(b *Booking) { b.PickupTime = "9am" }, "pickup time", true},
		{"address missing", func(b *Booking) { b.Address = "" }, "address", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(&b)
			err := v.CheckBooking(b)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var fe Errors
			require.True(t, errors.As(err, &fe), "got %v", err)
			require.Len(t, fe, 1)
			assert.Equal(t, tt.field, fe[0].Field)
		})
	}
}

func TestCheckBookingImage(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	b := validBooking()
	b.ImagePath = writeFile(t, dir, "notes.txt", []byte("just text"))
	assert.ErrorIs(t, v.CheckBooking(b), ErrNotImage)

	b.ImagePath = writeFile(t, dir, "bag.gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"))
	assert.NoError(t, v.CheckBooking(b))

	b.ImagePath = filepath.Join(dir, "missing.png")
	assert.ErrorIs(t, v.CheckBooking(b), os.ErrNotExist)
}

func TestCheckMessages(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		name string
		form any
		want string
	}{
		{"login empty", Login{}, "email is required; password is required"},
		{"login bad email", Login{Email: "nope", Password: "x"}, "enter a valid email address"},
		{"register short password", Register{Name: "A", Email: "a@x.io", Password: "123", Confirm: "123"}, "password must be at least 6 characters"},
		{"register mismatch", Register{Name: "A", Email: "a@x.io", Password: "123456", Confirm: "654321"}, "passwords do not match"},
		{"contact missing message", Contact{Name: "A", Email: "a@x.io"}, "message is required"},
		{"forgot empty", Forgot{}, "email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Check(tt.form)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}

	assert.NoError(t, v.Check(Contact{Name: "A", Email: "a@x.io", Message: "hi"}))
	assert.NoError(t, v.Check(Profile{}))
}

func TestCheckPasswordChange(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		name string
		in   PasswordChange
		want error
	}{
		{"ok", PasswordChange{Current: "a", New: "b", Confirm: "b"}, nil},
		{"missing current", PasswordChange{New: "b", Confirm: "b"}, ErrAllFieldsRequired},
		{"missing all", PasswordChange{}, ErrAllFieldsRequired},
		{"mismatch", PasswordChange{Current: "a", New: "b", Confirm: "c"}, ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckPasswordChange(tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEstimate(t *testing.T) {
	wt := &domain.WasteType{ID: 1, PricePerKg: 10}
	tests := []struct {
		qty  string
		wt   *domain.WasteType
		want string
	}{
		{"5", wt, "50.00"},
		{"2.5", &domain.WasteType{PricePerKg: 4}, "10.00"},
		{"0.125", &domain.WasteType{PricePerKg: 8}, "1.00"},
		{"", wt, "0.00"},
		{"abc", wt, "0.00"},
		{"5", nil, "0.00"},
	}
	for _, tt := range tests {
		if got := Estimate(tt.qty, tt.wt); got != tt.want {
			t.Errorf("Estimate(%q) = %q, want %q", tt.qty, got, tt.want)
		}
	}
}

func TestBookingRequest(t *testing.T) {
	b := validBooking()
	b.Quantity = " 5 "
	req := b.Request(7)
	assert.Equal(t, "5", req.QuantityKg)
	assert.Equal(t, 7, req.SelectedCenterID)
	assert.Equal(t, 2, req.WasteTypeID)
}

func TestCheckAvatar(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantErr  error
	}{
		{"png", png, "image/png", nil},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg", nil},
		{"gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"), "image/gif", ErrImageType},
		{"text", []byte("hello"), "", ErrImageType},
		{"too big", append(png, make([]byte, MaxAvatarBytes)...), "image/png", ErrImageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.data)
			got, err := CheckAvatar(path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantMIME != "" {
				assert.Equal(t, tt.wantMIME, got)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
