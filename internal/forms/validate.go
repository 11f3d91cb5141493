// Package forms validates user input before it is sent to the API.
package forms

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/naveenspark/marquee/pkg/domain"
)

const (
	minReleaseYear  = 1900
	releaseYearSlop = 5
)

// Errors maps a payload field name to its message.
type Errors map[string]string

var (
	validatorOnce sync.Once
	validate      *govalidator.Validate
)

func instance() *govalidator.Validate {
	validatorOnce.Do(func() {
		validate = govalidator.New(govalidator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("releaseyear", validateReleaseYear)
		_ = validate.RegisterValidation("genre", validateGenre)
	})
	return validate
}

// MaxReleaseYear is the latest accepted release year.
func MaxReleaseYear() int {
	return time.Now().Year() + releaseYearSlop
}

func validateReleaseYear(fl govalidator.FieldLevel) bool {
	y := int(fl.Field().Int())
	return y >= minReleaseYear && y <= MaxReleaseYear()
}

func validateGenre(fl govalidator.FieldLevel) bool {
	return domain.ValidGenre(fl.Field().String())
}

// Check validates obj and returns nil when it is valid.
func Check(obj any) Errors {
	err := instance().Struct(obj)
	if err == nil {
		return nil
	}
	verrs, ok := err.(govalidator.ValidationErrors)
	if !ok {
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, e := range verrs {
		name := fieldName(obj, e.StructField())
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = messageFor(obj, e)
	}
	return out
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func fieldName(obj any, structField string) string {
	field, found := structType(obj).FieldByName(structField)
	if !found {
		return strings.ToLower(structField)
	}
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		if name := strings.Split(tag, ",")[0]; name != "" {
			return name
		}
	}
	return strings.ToLower(structField)
}

// messageFor looks up the errorMsg tag, which is either one message for
// every rule or "rule=message" pairs separated by ";".
func messageFor(obj any, e govalidator.FieldError) string {
	field, found := structType(obj).FieldByName(e.StructField())
	if found {
		if tag := field.Tag.Get("errorMsg"); tag != "" {
			if !strings.Contains(tag, "=") {
				return tag
			}
			for _, pair := range strings.Split(tag, ";") {
				rule, msg, ok := strings.Cut(pair, "=")
				if ok && strings.TrimSpace(rule) == e.Tag() {
					return strings.TrimSpace(msg)
				}
			}
		}
	}

	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", e.Param())
	case "gte":
		return fmt.Sprintf("Value should be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Value should be less than or equal to %s", e.Param())
	case "eqfield":
		return fmt.Sprintf("Value should be equal to %s", e.Param())
	case "email":
		return "Value must be a valid email address"
	case "releaseyear":
		return "Release year must be between " + strconv.Itoa(minReleaseYear) + " and " + strconv.Itoa(MaxReleaseYear())
	default:
		return "This field is invalid"
	}
}
