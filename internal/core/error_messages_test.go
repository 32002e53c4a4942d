package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/csvrecords/internal/csvparse"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "malformed csv", err: fmt.Errorf("parse: %w", csvparse.ErrMalformedInput), wantCode: "FILE002"},
		{name: "input too large", err: ErrInputTooLarge, wantCode: "FILE001"},
		{name: "unsupported encoding", err: fmt.Errorf("%w: %q", ErrUnsupportedEncoding, "ebcdic"), wantCode: "FILE003"},
		{name: "no input", err: ErrNoInput, wantCode: "FILE004"},
		{name: "bad coercion", err: errors.New(`unknown value coercion "x" (want raw or typed)`), wantCode: "PRS001"},
		{name: "coercion sentinel", err: fmt.Errorf("%w %q", csvparse.ErrUnknownCoercion, "file too large"), wantCode: "PRS001"},
		{name: "busy", err: ErrTooManyParses, wantCode: "UPL002"},
		{name: "cancelled", err: context.Canceled, wantCode: "UPL004"},
		{name: "deadline before generic timeout", err: context.DeadlineExceeded, wantCode: "UPL005"},
		{name: "run not found", err: ErrRunNotFound, wantCode: "RUN001"},
		{name: "persistence disabled", err: ErrPersistenceDisabled, wantCode: "RUN002"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB004"},
		{name: "i/o timeout", err: errors.New("read tcp: i/o timeout"), wantCode: "DB006"},
		{name: "bad parameter", err: errors.New(`invalid request: persist must be true or false, got "maybe"`), wantCode: "REQ001"},
		{name: "rate limit", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "case insensitive", err: errors.New("INVALID CSV FORMAT"), wantCode: "FILE002"},
		{name: "unknown error", err: errors.New("some random internal error"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_MalformedInputIgnoresInputText(t *testing.T) {
	_, err := csvparse.Parse("file too large,file too large\n1,2")
	if err == nil {
		t.Fatal("Parse() expected duplicate header error")
	}
	if got := MapError(err).Code; got != "FILE002" {
		t.Errorf("MapError(%v) code = %q, want FILE002", err, got)
	}

	wrapped := fmt.Errorf("parse %s: %w", "run not found.csv", err)
	if got := MapError(wrapped).Code; got != "FILE002" {
		t.Errorf("MapError(%v) code = %q, want FILE002", wrapped, got)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrRunNotFound)

	expected := "Parse run not found (Code: RUN001). Verify the run ID; runs are only stored when persistence is requested"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: csvparse.ErrMalformedInput, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("line 3: %w", csvparse.ErrMalformedInput)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Input is not a valid CSV" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, csvparse.ErrMalformedInput) {
			t.Error("Unwrap() should expose the original error chain")
		}
	})
}
