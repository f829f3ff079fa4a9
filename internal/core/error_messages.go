// Package core provides the row-ordering and view-state logic for the financial summary table.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Codes are grouped by category:
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - Unknown row: The row to move is not in this table
//	          Action: Refresh the page and try again
//	          Sentinel: ErrUnknownRow
//
//	VIEW002 - Invalid currency: Currency is not one of $, €, £
//	          Action: Pick a currency from the menu
//	          Sentinel: ErrInvalidCurrency
//
//	VIEW003 - Invalid precision: Decimal view must be 0, 1 or 2
//	          Action: Pick a decimal view from the menu
//	          Sentinel: ErrInvalidPrecision
//
//	VIEW004 - Invalid direction: Page direction must be next or previous
//	          Sentinel: ErrInvalidDirection
//
//	VIEW005 - Invalid event: The request did not describe a known change
//	          Sentinel: ErrInvalidEvent
//
// # Infrastructure Errors
//
//	SRC001  - Data source could not be read
//	          Patterns: "load dataset", "data source"
//
//	SES001  - Session store unavailable
//	          Patterns: "session store", "redis"
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
//	ERR000  - Fallback for anything else; check application logs
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessages maps sentinel errors to user messages. Checked with
// errors.Is before any pattern matching.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrUnknownRow, UserMessage{
		Message: "The row to move is not in this table",
		Action:  "Refresh the page and try again",
		Code:    "VIEW001",
	}},
	{ErrInvalidCurrency, UserMessage{
		Message: "Currency must be one of $, €, £",
		Action:  "Pick a currency from the menu",
		Code:    "VIEW002",
	}},
	{ErrInvalidPrecision, UserMessage{
		Message: "Decimal view must be 0, 1 or 2",
		Action:  "Pick a decimal view from the menu",
		Code:    "VIEW003",
	}},
	{ErrInvalidDirection, UserMessage{
		Message: "Page direction must be next or previous",
		Action:  "Use the Previous and Next buttons",
		Code:    "VIEW004",
	}},
	{ErrInvalidEvent, UserMessage{
		Message: "The request did not describe a known change",
		Action:  "Check the request body",
		Code:    "VIEW005",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first match wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "load dataset",
		msg: UserMessage{
			Message: "The report data could not be loaded",
			Action:  "Check the data source configuration",
			Code:    "SRC001",
		},
	},
	{
		pattern: "data source",
		msg: UserMessage{
			Message: "The report data could not be loaded",
			Action:  "Check the data source configuration",
			Code:    "SRC001",
		},
	},
	{
		pattern: "session store",
		msg: UserMessage{
			Message: "Your view settings could not be saved",
			Action:  "Please try again in a few moments",
			Code:    "SES001",
		},
	},
	{
		pattern: "redis",
		msg: UserMessage{
			Message: "Your view settings could not be saved",
			Action:  "Please try again in a few moments",
			Code:    "SES001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a minute before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again. If the problem persists, contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil errors.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}

	return defaultMessage
}

// FormatUserError returns a single display string for err.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown to users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
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
