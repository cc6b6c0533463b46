package booking

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateRequest is the input of Allocator.Create.
type CreateRequest struct {
	UserID    uint64  `json:"user_id" validate:"required"`
	CourtID   uint64  `json:"court_id" validate:"required"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"required,hhmm"`
	EndTime   string  `json:"end_time" validate:"required,hhmm"`
	Status    string  `json:"status" validate:"omitempty,oneof=pending confirmed"`
	Note      *string `json:"note" validate:"omitempty,max=500"`
}

// UpdateRequest is the input of Allocator.Update.  Nil fields keep their
// current value.
type UpdateRequest struct {
	CourtID   *uint64 `json:"court_id" validate:"omitempty,gt=0"`
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime   *string `json:"end_time" validate:"omitempty,hhmm"`
	Status    *string `json:"status" validate:"omitempty,oneof=pending confirmed completed"`
	Note      *string `json:"note" validate:"omitempty,max=500"`
}

func (r UpdateRequest) empty() bool {
	return r.CourtID == nil && r.Date == nil && r.StartTime == nil &&
		r.EndTime == nil && r.Status == nil && r.Note == nil
}

// newValidator returns a validator that reports json field names and knows
// the hhmm tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs v over s and returns the first failure as a
// validation Error.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError("invalid request")
	}
	return validationError(fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "datetime":
		return field + " must be in YYYY-MM-DD format"
	case "hhmm":
		return field + " must be in HH:MM format"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gt":
		return field + " must be greater than " + fe.Param()
	}
	return field + " is invalid"
}
