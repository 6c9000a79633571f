package validator

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagTaskStatus = "taskstatus" // pending | completed
	TagTrimmed    = "trimmed"    // no leading/trailing whitespace
)

// TaskStatuses are the checklist task states accepted by TagTaskStatus.
var TaskStatuses = []string{"pending", "completed"}

func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagTaskStatus, validateTaskStatus)
	_ = v.validate.RegisterValidation(TagTrimmed, validateTrimmed)
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return slices.Contains(TaskStatuses, fl.Field().String())
}

// validateTrimmed 空值交给 required 处理。
func validateTrimmed(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == strings.TrimSpace(value)
}
