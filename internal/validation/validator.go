// Package validation holds the single request validator shared by gin
// binding and offline importers, plus the translation of its failures into
// service field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/service"
)

// TagName is the struct tag request types declare their rules in
const TagName = "binding"

var (
	tagColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the process-wide validator with the custom rules registered
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName(TagName)
		v.RegisterTagNameFunc(jsonFieldName)
		mustRegister(v, "tagcolor", tagColorPattern)
		mustRegister(v, "slug", slugPattern)
		mustRegister(v, "username", usernamePattern)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// jsonFieldName reports fields by the name clients send them under
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// ValidateStruct checks s against its binding tags and returns
// service.ValidationErrors on failure
func ValidateStruct(s any) error {
	if err := GetValidator().Struct(s); err != nil {
		return Translate(err)
	}
	return nil
}

// Translate converts validator failures into field errors. Errors of any
// other type are returned unchanged.
func Translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var out service.ValidationErrors
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "tagcolor":
		return "Enter a valid HEX color, for example #E26C2D."
	case "slug":
		return "Enter a valid slug of letters, numbers, underscores or hyphens."
	case "username":
		return "Enter a valid username. It may contain only letters, numbers and @/./+/-/_ characters."
	case "min":
		if isString {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}

// ginValidator lets gin's ShouldBind use the shared validator
type ginValidator struct{}

func (ginValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return GetValidator().Struct(obj)
}

func (ginValidator) Engine() any {
	return GetValidator()
}

var installOnce sync.Once

// InstallGinValidator swaps gin's default binding validator for the shared one
func InstallGinValidator() {
	installOnce.Do(func() {
		binding.Validator = ginValidator{}
	})
}
