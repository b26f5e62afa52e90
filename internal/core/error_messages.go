// Package core provides the headless table pipeline.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users can quote the code shown in a notification.
//
// # Upstream Errors (HTTP4xx/HTTP5xx)
//
// A non-OK response from the data endpoint is mapped by status:
//
//	HTTP401/HTTP403 - Access to the data service was denied
//	HTTP404         - The data endpoint was not found
//	HTTP5xx         - The data service failed to respond
//	HTTPxxx         - The data service rejected the request
//
// # Network Errors (NET001-NET099)
//
//	NET001 - Connection refused: Unable to reach the data service
//	NET002 - Connection reset: Connection to the data service was interrupted
//	NET003 - Unknown host: The data service address could not be resolved
//	NET004 - Timeout: The data service took too long to respond
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request was cancelled
//	REQ002 - Too many requests are in flight
//	REQ003 - Invalid query parameter
//	REQ004 - Notification not found
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - Response has no data field
//	DATA002 - Response is not valid JSON
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found
//	TBL002 - Unknown dataset
//	TBL003 - Invalid sort column
//	TBL004 - Invalid row or column
//	TBL005 - Invalid page
//
// # Filter Errors (FLT001-FLT099)
//
//	FLT001 - Invalid filter
//	FLT002 - Invalid date
//	FLT003 - Start date is after end date
//	FLT004 - Unknown filter field
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Export failed
//	EXP002 - Export is not enabled for the table
//	EXP003 - Unknown export format
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - An unexpected error occurred
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.
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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Network
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the data service",
			Action:  "Please try again in a few moments",
			Code:    "NET001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Connection to the data service was interrupted",
			Action:  "Please try again",
			Code:    "NET002",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "The data service address could not be resolved",
			Action:  "Check the API_URL setting",
			Code:    "NET003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The data service took too long to respond",
			Action:  "Narrow the filters or try again later",
			Code:    "NET004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The data service took too long to respond",
			Action:  "Narrow the filters or try again later",
			Code:    "NET004",
		},
	},

	// Request
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "too many concurrent fetches",
		msg: UserMessage{
			Message: "Too many requests are in flight",
			Action:  "Please wait a moment and try again",
			Code:    "REQ002",
		},
	},

	// Data
	{
		pattern: "missing data field",
		msg: UserMessage{
			Message: "The data service returned an unexpected response",
			Action:  "Check that API_URL points at a changelog endpoint",
			Code:    "DATA001",
		},
	},
	{
		pattern: "decode response",
		msg: UserMessage{
			Message: "The data service returned invalid JSON",
			Action:  "Check that API_URL points at a changelog endpoint",
			Code:    "DATA002",
		},
	},

	// Table
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
	{
		pattern: "unknown dataset",
		msg: UserMessage{
			Message: "Unknown dataset",
			Action:  "This dataset is not configured",
			Code:    "TBL002",
		},
	},
	{
		pattern: "invalid sort column",
		msg: UserMessage{
			Message: "That column cannot be sorted",
			Action:  "Reload the table and pick a visible column",
			Code:    "TBL003",
		},
	},
	{
		pattern: "invalid row index",
		msg: UserMessage{
			Message: "That row is no longer on the page",
			Action:  "Reload the table",
			Code:    "TBL004",
		},
	},
	{
		pattern: "invalid column index",
		msg: UserMessage{
			Message: "That column is no longer on the page",
			Action:  "Reload the table",
			Code:    "TBL004",
		},
	},
	{
		pattern: "invalid page",
		msg: UserMessage{
			Message: "Invalid page or page size",
			Action:  "Pick a page number of 1 or more",
			Code:    "TBL005",
		},
	},

	// Filters and query parameters
	{
		pattern: "invalid filter",
		msg: UserMessage{
			Message: "Invalid filter",
			Action:  "Use the form field=value",
			Code:    "FLT001",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date",
			Action:  "Use YYYY-MM-DD or an RFC 3339 timestamp",
			Code:    "FLT002",
		},
	},
	{
		pattern: "start date is after end date",
		msg: UserMessage{
			Message: "The start date is after the end date",
			Action:  "Swap or adjust the dates",
			Code:    "FLT003",
		},
	},
	{
		pattern: "unknown filter field",
		msg: UserMessage{
			Message: "That field cannot be filtered on",
			Action:  "Remove the filter or pick another field",
			Code:    "FLT004",
		},
	},
	{
		pattern: "invalid query parameter",
		msg: UserMessage{
			Message: "Invalid query parameter",
			Action:  "Check offset, limit and date parameters",
			Code:    "REQ003",
		},
	},
	{
		pattern: "notification not found",
		msg: UserMessage{
			Message: "Notification not found",
			Action:  "It may already have been dismissed",
			Code:    "REQ004",
		},
	},

	// Export
	{
		pattern: "export failed",
		msg: UserMessage{
			Message: "Export failed",
			Action:  "Please try again",
			Code:    "EXP001",
		},
	},
	{
		pattern: "export is not enabled",
		msg: UserMessage{
			Message: "This table cannot be exported",
			Action:  "Enable include_export for the table",
			Code:    "EXP002",
		},
	},
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "Unknown export format",
			Action:  "Use csv or xlsx",
			Code:    "EXP003",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// HTTP status errors are mapped by status code; everything else goes through
// the pattern table. Unknown errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusMessage(statusErr.StatusCode)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func statusMessage(code int) UserMessage {
	msg := UserMessage{Code: fmt.Sprintf("HTTP%d", code), Action: "Please try again"}
	switch {
	case code == 401 || code == 403:
		msg.Message = "Access to the data service was denied"
		msg.Action = "Check the API key configuration"
	case code == 404:
		msg.Message = "The data endpoint was not found"
		msg.Action = "Check the table's data path"
	case code >= 500:
		msg.Message = "The data service failed to respond"
	default:
		msg.Message = "The data service rejected the request"
		msg.Action = "Check the active filters"
	}
	return msg
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
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
