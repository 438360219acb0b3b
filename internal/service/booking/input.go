package booking

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kwairways/backend/internal/domain"
)

type CreateBookingInput struct {
	UserID         uuid.UUID        `json:"-" validate:"required"`
	FlightID       uuid.UUID        `json:"flight_id" validate:"required"`
	ReturnFlightID *uuid.UUID       `json:"return_flight_id"`
	Passengers     []PassengerInput `json:"passengers" validate:"required,min=1,max=9,dive"`
	Contact        ContactInput     `json:"contact_info"`
	Payment        PaymentInput     `json:"payment"`
}

type PassengerInput struct {
	FirstName      string `json:"first_name" validate:"required,min=1,max=50"`
	LastName       string `json:"last_name" validate:"required,min=1,max=50"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,phone"`
	DateOfBirth    string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender         string `json:"gender" validate:"required,oneof=male female other"`
	Nationality    string `json:"nationality" validate:"required,len=2"`
	PassportNumber string `json:"passport_number" validate:"required,min=5,max=20"`
	PassportExpiry string `json:"passport_expiry" validate:"required,datetime=2006-01-02"`
	SeatPreference string `json:"seat_preference" validate:"omitempty,oneof=window aisle middle none"`
	MealPreference string `json:"meal_preference" validate:"omitempty,oneof=regular vegetarian vegan halal kosher none"`
}

type ContactInput struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

type PaymentInput struct {
	CardNumber     string `json:"card_number" validate:"required,numeric,min=13,max=19"`
	ExpiryMonth    int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear     int    `json:"expiry_year" validate:"required"`
	CVV            string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	CardholderName string `json:"cardholder_name" validate:"required,min=2,max=100"`
}

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return v
}

// validateCreate checks the whole input in one pass and returns every
// offending field, plus the passengers parsed into domain records when the
// input is clean. Nothing here touches storage.
func (s *BookingService) validateCreate(input CreateBookingInput) ([]domain.Passenger, error) {
	var fields []domain.FieldError

	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			fields = append(fields, domain.FieldError{
				Field:   trimNamespace(fe.Namespace()),
				Message: messageForTag(fe),
			})
		}
	}

	now := time.Now()
	if input.Payment.ExpiryYear != 0 && input.Payment.ExpiryYear < now.Year() {
		fields = append(fields, domain.FieldError{Field: "payment.expiry_year", Message: "card is expired"})
	}

	passengers := make([]domain.Passenger, 0, len(input.Passengers))
	for i, p := range input.Passengers {
		prefix := fmt.Sprintf("passengers[%d].", i)

		dob, dobErr := time.Parse("2006-01-02", p.DateOfBirth)
		if dobErr == nil && dob.After(now) {
			fields = append(fields, domain.FieldError{Field: prefix + "date_of_birth", Message: "must not be in the future"})
		}
		expiry, expErr := time.Parse("2006-01-02", p.PassportExpiry)
		if expErr == nil && expiry.Before(now) {
			fields = append(fields, domain.FieldError{Field: prefix + "passport_expiry", Message: "passport is expired"})
		}
		if dobErr != nil || expErr != nil {
			// already reported by the datetime tag
			continue
		}

		passengers = append(passengers, domain.Passenger{
			ID:             uuid.New(),
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Email:          p.Email,
			Phone:          p.Phone,
			DateOfBirth:    dob,
			Gender:         genderCode(p.Gender),
			Nationality:    strings.ToUpper(p.Nationality),
			PassportNumber: p.PassportNumber,
			PassportExpiry: expiry,
			SeatPreference: defaultString(p.SeatPreference, "none"),
			MealPreference: defaultString(p.MealPreference, "regular"),
		})
	}

	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	return passengers, nil
}

func trimNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " item(s)"
		}
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "numeric":
		return "must contain only digits"
	default:
		return "is invalid"
	}
}

func genderCode(g string) string {
	switch g {
	case "male":
		return "M"
	case "female":
		return "F"
	default:
		return "OTHER"
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
