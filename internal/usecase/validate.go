package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phenrril/drukuje3d/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct returns a *domain.ValidationError keyed by JSON field path.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return formatValidationError(verrs)
}

func formatValidationError(verrs validator.ValidationErrors) *domain.ValidationError {
	out := &domain.ValidationError{Fields: map[string]string{}}
	for _, e := range verrs {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			out.Fields[field] = "is required"
		case "email":
			out.Fields[field] = "must be a valid email"
		case "min":
			if e.Kind() == reflect.String {
				out.Fields[field] = fmt.Sprintf("must be at least %s characters", e.Param())
			} else {
				out.Fields[field] = fmt.Sprintf("must be at least %s", e.Param())
			}
		case "max":
			out.Fields[field] = fmt.Sprintf("must be at most %s", e.Param())
		case "len":
			out.Fields[field] = fmt.Sprintf("must have length %s", e.Param())
		case "oneof":
			out.Fields[field] = fmt.Sprintf("must be one of [%s]", e.Param())
		case "numeric":
			out.Fields[field] = "must be numeric"
		default:
			out.Fields[field] = "is invalid"
		}
	}
	return out
}
