package validator

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/shopspring/decimal"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	// Prices are decimals; compare them as numbers so gte/lte tags apply.
	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	validator.RegisterValidation("language_version", validateLanguageVersion)
	validator.RegisterValidation("clock_time", validateClockTime)
	validator.RegisterValidation("calendar_date", validateCalendarDate)

	return validator
}

func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	f, _ := d.Float64()

	return f
}

func validateLanguageVersion(fl validator.FieldLevel) bool {
	_, err := domain.ParseLanguageVersion(fl.Field().String())
	return err == nil
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := domain.ParseClockTime(fl.Field().String())
	return err == nil
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := domain.ParseShowingDate(fl.Field().String())
	return err == nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", err.Param())
	case "uppercase":
		return "must be an uppercase letter"
	case "language_version":
		return "must be one of subtitles, dubbing, lector"
	case "clock_time":
		return "must be a time in HH:MM format"
	case "calendar_date":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
