// Package request decodes and validates JSON request bodies.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := model.ParseWeekday(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := model.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := model.ParseCategory(fl.Field().String())
		return err == nil
	})

	return v
}

// Decode reads r's JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "weekday", "timeofday", "category", "datetime":
			msgs = append(msgs, fmt.Sprintf("field '%s' is not a valid %s", fe.Field(), fe.ActualTag()))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(msgs, ", "))
}
