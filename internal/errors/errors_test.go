package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "not found",
			},
			want: "not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeValidation,
				Message: "invalid JSON body",
				Cause:   errors.New("unexpected EOF"),
			},
			want: "invalid JSON body: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestWrap_Nil(t *testing.T) {
	if got := Wrap(nil, ErrCodeInternal, "ignored"); got != nil {
		t.Errorf("Wrap(nil) = %v, want nil", got)
	}
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", Validation("value is required"), IsValidation},
		{"validation formatted", Validationf("unknown action: %s", "drop"), IsValidation},
		{"unauthorized", Unauthorized("missing bearer token"), IsUnauthorized},
		{"forbidden", Forbidden("admin token required"), IsForbidden},
		{"not found", NotFound("not found"), IsNotFound},
		{"deployment", Deployment("jwt secret not configured"), IsDeployment},
		{"internal", Internal("authentication error"), IsInternal},
		{"wrapped through fmt", fmt.Errorf("outer: %w", Forbidden("missing bind claim")), IsForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate returned false for %v", tt.err)
			}
		})
	}

	if IsValidation(errors.New("plain")) {
		t.Error("plain error must not classify as validation")
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := ValidationField("value", "value is required")
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeValidation)
	}
	if GetField(err) != "value" {
		t.Errorf("GetField() = %v, want value", GetField(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode() on plain error should be empty")
	}
}

func TestPublicMessage(t *testing.T) {
	wrapped := Wrap(errors.New("invalid character 'x'"), ErrCodeValidation, "invalid JSON body")
	if got := PublicMessage(wrapped); got != "invalid JSON body" {
		t.Errorf("PublicMessage() = %q", got)
	}
	if got := PublicMessage(errors.New("boom")); got != "boom" {
		t.Errorf("PublicMessage() = %q", got)
	}
	if got := PublicMessage(nil); got != "" {
		t.Errorf("PublicMessage(nil) = %q", got)
	}
}
