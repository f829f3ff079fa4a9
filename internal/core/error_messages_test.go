package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "wrapped unknown row",
			err:         fmt.Errorf("apply: %w", ErrUnknownRow),
			wantCode:    "VIEW001",
			wantMessage: "The row to move is not in this table",
		},
		{
			name:        "invalid currency",
			err:         fmt.Errorf("%w: %q", ErrInvalidCurrency, "¥"),
			wantCode:    "VIEW002",
			wantMessage: "Currency must be one of $, €, £",
		},
		{
			name:     "invalid precision",
			err:      ErrInvalidPrecision,
			wantCode: "VIEW003",
		},
		{
			name:     "invalid direction",
			err:      ErrInvalidDirection,
			wantCode: "VIEW004",
		},
		{
			name:     "invalid event",
			err:      ErrInvalidEvent,
			wantCode: "VIEW005",
		},
		{
			name:     "data source failure",
			err:      errors.New("load dataset: open data.json: no such file"),
			wantCode: "SRC001",
		},
		{
			name:     "session store failure",
			err:      errors.New("session store load: dial tcp: connection refused"),
			wantCode: "SES001",
		},
		{
			name:     "rate limit",
			err:      errors.New("Rate limit exceeded"),
			wantCode: "RATE001",
		},
		{
			name:        "unknown error falls back",
			err:         errors.New("something odd"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.wantMessage != "" && got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrInvalidPrecision)
	want := "Decimal view must be 0, 1 or 2 (Code: VIEW003). Pick a decimal view from the menu"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(ErrUnknownRow) {
		t.Error("IsUserFacing(ErrUnknownRow) = false")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("IsUserFacing(boom) = true")
	}
}

func TestUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should be nil")
	}

	ue := NewUserError(ErrInvalidCurrency)
	if ue.Error() != "Currency must be one of $, €, £" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, ErrInvalidCurrency) {
		t.Error("UserError should unwrap to the technical error")
	}
	if got := MapError(fmt.Errorf("handler: %w", ue)); got.Code != "VIEW002" {
		t.Errorf("MapError of wrapped UserError = %q, want VIEW002", got.Code)
	}
}
