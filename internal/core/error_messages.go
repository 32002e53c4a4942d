package core

// error_messages.go maps technical errors to user-facing messages with a
// code for support reference.
//
// Codes by category:
//
//	FILE001 - Input too large          "file too large"
//	FILE002 - Invalid CSV              "invalid csv"
//	FILE003 - Encoding error           "encoding error"
//	FILE004 - No input                 "no file provided"
//	PRS001  - Unknown coercion policy  "unknown value coercion"
//	REQ001  - Bad request parameter    "invalid request"
//	UPL002  - System busy              "too many concurrent parses"
//	UPL004  - Request cancelled        "context canceled"
//	UPL005  - Request timeout          "context deadline exceeded"
//	RUN001  - Run not found            "run not found"
//	RUN002  - Persistence disabled     "persistence disabled"
//	DB004   - Connection refused       "connection refused"
//	DB005   - Connection reset         "connection reset"
//	DB006   - Timeout                  "timeout"
//	RATE001 - Rate limited             "rate limit"
//	ERR000  - Anything else
//
// Known sentinel errors are resolved with errors.Is first. Error text can
// carry user input (a header name, a file name), so it is only consulted
// for errors outside this package's sentinels, such as driver errors.
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones
// ("context deadline exceeded" before "timeout").

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvrecords/internal/csvparse"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Input errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Input exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "Input is not a valid CSV",
			Action:  "Ensure every row has the same number of comma-separated columns as the header and header names are unique",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "Input uses an unsupported character encoding",
			Action:  "Save the file as UTF-8 or pass encoding=latin1 or encoding=windows-1252",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No CSV input was provided",
			Action:  "Send the CSV as the request body or as a file field named \"file\"",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unknown value coercion",
		msg: UserMessage{
			Message: "Unknown value coercion policy",
			Action:  "Use coercion=raw or coercion=typed",
			Code:    "PRS001",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "Request parameters are invalid",
			Action:  "Check the query string and form fields; persist must be true or false",
			Code:    "REQ001",
		},
	},

	// Capacity and request lifecycle
	{
		pattern: "too many concurrent parses",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Stored runs
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Parse run not found",
			Action:  "Verify the run ID; runs are only stored when persistence is requested",
			Code:    "RUN001",
		},
	},
	{
		pattern: "persistence disabled",
		msg: UserMessage{
			Message: "Run history is not available",
			Action:  "Configure DATABASE_URL to store parse runs",
			Code:    "RUN002",
		},
	},

	// Database connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches. Support staff should
// check application logs for the original error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// sentinelPatterns ties sentinel errors to their entry in errorPatterns.
// Malformed input comes first: its message quotes the offending input.
var sentinelPatterns = []struct {
	err     error
	pattern string
}{
	{csvparse.ErrMalformedInput, "invalid csv"},
	{csvparse.ErrUnknownCoercion, "unknown value coercion"},
	{ErrInputTooLarge, "file too large"},
	{ErrUnsupportedEncoding, "encoding error"},
	{ErrNoInput, "no file provided"},
	{ErrTooManyParses, "too many concurrent parses"},
	{ErrRunNotFound, "run not found"},
	{ErrPersistenceDisabled, "persistence disabled"},
	{context.Canceled, "context canceled"},
	{context.DeadlineExceeded, "context deadline exceeded"},
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sp := range sentinelPatterns {
		if errors.Is(err, sp.err) {
			return patternMessage(sp.pattern)
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func patternMessage(pattern string) UserMessage {
	for _, ep := range errorPatterns {
		if ep.pattern == pattern {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
