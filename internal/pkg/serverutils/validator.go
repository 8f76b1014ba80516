package serverutils

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"spa-booking-be/internal/pkg/exceptions"
	"spa-booking-be/pkg/money"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator lets money.Amount fields carry tags. Amounts validate as their
// decimal value; "whole" rejects minor units.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if a, ok := field.Interface().(money.Amount); ok {
			return a.Decimal().InexactFloat64()
		}
		return nil
	}, money.Amount{})
	_ = v.RegisterValidation("whole", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 {
			return false
		}
		return f.Float() == math.Trunc(f.Float())
	})
	return v
}

// ValidateRequest runs the struct tags and turns failures into a ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &exceptions.ValidationError{Message: err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return &exceptions.ValidationError{Message: strings.Join(msgs, "; ")}
}
