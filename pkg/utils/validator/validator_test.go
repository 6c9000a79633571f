package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

type employeeInput struct {
	Name  string `json:"name" validate:"required,trimmed,max=128"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"required"`
}

type taskUpdate struct {
	Status string `json:"status" validate:"required,taskstatus"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantErr string
	}{
		{"合法输入", &employeeInput{Name: "Ana", Email: "ana@example.com", Role: "engineer"}, ""},
		{"缺少必填字段", &employeeInput{Name: "Ana"}, "role is required"},
		{"首尾空格", &employeeInput{Name: " Ana", Role: "engineer"}, "name must not have leading or trailing spaces"},
		{"邮箱格式", &employeeInput{Name: "Ana", Role: "x", Email: "nope"}, "email must be a valid email address"},
		{"任务状态", &taskUpdate{Status: "done"}, "status must be one of [pending completed]"},
		{"任务状态合法", &taskUpdate{Status: "completed"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidParam))
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, errors.IsRetryable(err))
		})
	}
}

func TestMultipleFieldErrors(t *testing.T) {
	err := Struct(&employeeInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "role is required")
}
