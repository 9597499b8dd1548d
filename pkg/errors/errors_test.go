package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to unwrap to original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "something broke",
				Err:     errors.New("disk full"),
			},
			expected: "INTERNAL_ERROR: something broke (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"NotFound", NotFound("Calendar"), CodeNotFound, http.StatusNotFound},
		{"Validation", Validation("bad slots", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"InvalidInput", InvalidInput("empty id"), CodeInvalidInput, http.StatusBadRequest},
		{"Forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"Conflict", Conflict("overlap"), CodeConflict, http.StatusConflict},
		{"SlotUnavailable", SlotUnavailable("no such slot"), CodeSlotUnavailable, http.StatusNotFound},
		{"SlotConflict", SlotConflict("slot just taken"), CodeSlotConflict, http.StatusConflict},
		{"InvalidState", InvalidState("appointment is terminal"), CodeInvalidState, http.StatusConflict},
		{"Internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := SlotConflict("taken")

	if !IsCode(err, CodeSlotConflict) {
		t.Error("expected IsCode to match SLOT_CONFLICT")
	}
	if IsCode(err, CodeSlotUnavailable) {
		t.Error("expected IsCode not to match SLOT_UNAVAILABLE")
	}
	if IsCode(errors.New("plain"), CodeSlotConflict) {
		t.Error("expected IsCode to reject non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Appointment")
	if AsAppError(appErr) != appErr {
		t.Error("expected AsAppError to return the same AppError")
	}

	plain := errors.New("plain failure")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected plain errors to convert to %s, got %s", CodeInternal, converted.Code)
	}
	if converted.Err != plain {
		t.Error("expected converted error to wrap original")
	}
}

func TestWithDetails(t *testing.T) {
	err := NotFoundWithID("Appointment", "abc123")

	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail 'abc123', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Appointment" {
		t.Errorf("expected resource detail 'Appointment', got %v", err.Details["resource"])
	}
}
