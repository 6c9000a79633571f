// Package validator wraps go-playground/validator with the rules used by the
// onboarding domain and converts failures into errno request errors.
package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// Validator validates structs tagged with `validate:"..."`.
type Validator struct {
	validate *validator.Validate
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// New creates a Validator with custom rules registered.
func New() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	// 错误信息中使用 json 字段名
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.registerCustomRules()
	return v
}

// Default returns the process-wide Validator.
func Default() *Validator {
	defaultOnce.Do(func() { defaultV = New() })
	return defaultV
}

// Struct validates s. Failures are returned as ErrInvalidParam listing every
// offending field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.ErrInvalidParam.WithCause(err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.ErrInvalidParam.WithMessage(strings.Join(msgs, "; "))
}

// Struct validates s with the default Validator.
func Struct(s any) error {
	return Default().Struct(s)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof", TagTaskStatus:
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), allowed(fe))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case TagTrimmed:
		return fmt.Sprintf("%s must not have leading or trailing spaces", fe.Field())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

func allowed(fe validator.FieldError) string {
	if fe.Tag() == TagTaskStatus {
		return strings.Join(TaskStatuses, " ")
	}
	return fe.Param()
}
