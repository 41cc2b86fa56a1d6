// Package forms validates user input before any request is sent.
package forms

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smartwaste/pickup/pkg/client"
	"github.com/smartwaste/pickup/pkg/domain"
)

// Date and time layouts accepted for a pickup.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// MinQuantityKg is the smallest bookable quantity.
const MinQuantityKg = 0.01

var (
	ErrAllFieldsRequired = errors.New("All fields are required")
	ErrPasswordMismatch  = errors.New("Passwords do not match!")
)

// Login is the sign-in form.
type Login struct {
	Email    string `label:"email" validate:"required,email"`
	Password string `label:"password" validate:"required"`
}

// Register is the sign-up form.
type Register struct {
	Name     string `label:"name" validate:"required,max=150"`
	Email    string `label:"email" validate:"required,email"`
	Phone    string `label:"phone" validate:"omitempty,max=20"`
	Address  string `label:"address" validate:"omitempty,max=500"`
	Password string `label:"password" validate:"required,min=6"`
	Confirm  string `label:"confirm password" validate:"required,eqfield=Password"`
}

// Request converts the form to the API payload.
func (r Register) Request() client.RegisterRequest {
	return client.RegisterRequest{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Address:  r.Address,
		Password: r.Password,
	}
}

// Contact is the landing page message form.
type Contact struct {
	Name    string `label:"name" validate:"required"`
	Email   string `label:"email" validate:"required,email"`
	Message string `label:"message" validate:"required"`
}

// Forgot is the password reset request form.
type Forgot struct {
	Email string `label:"email" validate:"required,email"`
}

// Profile holds the editable profile fields.
type Profile struct {
	Name    string `label:"name" validate:"omitempty,max=150"`
	Phone   string `label:"phone" validate:"omitempty,max=20"`
	Address string `label:"address" validate:"omitempty,max=500"`
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	Current string `label:"current password" validate:"required"`
	New     string `label:"new password" validate:"required"`
	Confirm string `label:"confirm password" validate:"required,eqfield=New"`
}

// Booking is step one of the booking wizard.
type Booking struct {
	WasteTypeID int    `label:"waste type" validate:"gt=0"`
	Quantity    string `label:"quantity" validate:"required,minqty"`
	PickupDate  string `label:"pickup date" validate:"required,datetime=2006-01-02,notpast"`
	PickupTime  string `label:"pickup time" validate:"required,datetime=15:04"`
	Address     string `label:"address" validate:"required"`
	ImagePath   string `label:"image"`
}

// Request converts the booking form to the API payload.
func (b Booking) Request(centerID int) client.BookingRequest {
	return client.BookingRequest{
		WasteTypeID:      b.WasteTypeID,
		QuantityKg:       strings.TrimSpace(b.Quantity),
		PickupDate:       b.PickupDate,
		PickupTime:       b.PickupTime,
		Address:          b.Address,
		SelectedCenterID: centerID,
		ImagePath:        b.ImagePath,
	}
}

// FieldError is one failed field.
type FieldError struct {
	Field   string
	Message string
}

// Errors lists every failed field in declaration order.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Validator checks forms. The clock decides what "today" is for pickup dates.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a validator using the wall clock.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a validator with a fixed notion of now.
func NewWithClock(now func() time.Time) *Validator {
	fv := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}
	fv.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return strings.ToLower(f.Name)
	})
	fv.v.RegisterValidation("notpast", fv.notPast) //nolint:errcheck
	fv.v.RegisterValidation("minqty", minQuantity) //nolint:errcheck
	return fv
}

// Check validates any of the form structs.
func (v *Validator) Check(form any) error {
	err := v.v.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("forms.Check: %w", err)
	}
	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// CheckPasswordChange reports ErrAllFieldsRequired before ErrPasswordMismatch.
func (v *Validator) CheckPasswordChange(p PasswordChange) error {
	err := v.v.Struct(p)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("forms.CheckPasswordChange: %w", err)
	}
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return ErrAllFieldsRequired
		}
	}
	return ErrPasswordMismatch
}

// CheckBooking validates step one, including the optional image.
func (v *Validator) CheckBooking(b Booking) error {
	if err := v.Check(b); err != nil {
		return err
	}
	if b.ImagePath != "" {
		if _, err := CheckBookingImage(b.ImagePath); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) notPast(fl validator.FieldLevel) bool {
	now := v.now()
	d, err := time.ParseInLocation(DateLayout, fl.Field().String(), now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(today)
}

func minQuantity(fl validator.FieldLevel) bool {
	q, ok := parseQuantity(fl.Field().String())
	return ok && q >= MinQuantityKg
}

func parseQuantity(s string) (float64, bool) {
	q, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false
	}
	return q, true
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "gt":
		return "choose a " + field
	case "datetime":
		if fe.Param() == DateLayout {
			return field + " must be YYYY-MM-DD"
		}
		return field + " must be HH:MM"
	case "notpast":
		return field + " cannot be in the past"
	case "minqty":
		return fmt.Sprintf("%s must be at least %.2f kg", field, MinQuantityKg)
	}
	return field + " is invalid"
}

// Estimate is quantity times the waste type's price, to two decimals.
// An unparseable quantity or missing type estimates to zero.
func Estimate(quantity string, wt *domain.WasteType) string {
	if wt == nil {
		return "0.00"
	}
	q, ok := parseQuantity(quantity)
	if !ok {
		q = 0
	}
	return fmt.Sprintf("%.2f", q*wt.PricePerKg.Float())
}
