package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
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
			name:        "connection refused maps correctly",
			err:         errors.New("Get \"http://localhost:8080/api/v1/services\": dial tcp: connection refused"),
			wantCode:    "NET001",
			wantMessage: "Unable to reach the data service",
		},
		{
			name:        "unknown host maps correctly",
			err:         errors.New("dial tcp: lookup changelog.internal: no such host"),
			wantCode:    "NET003",
			wantMessage: "The data service address could not be resolved",
		},
		{
			name:        "deadline maps to timeout",
			err:         fmt.Errorf("fetch /services: %w", context.DeadlineExceeded),
			wantCode:    "NET004",
			wantMessage: "The data service took too long to respond",
		},
		{
			name:        "cancelled request",
			err:         context.Canceled,
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "missing data field",
			err:         ErrMissingData,
			wantCode:    "DATA001",
			wantMessage: "The data service returned an unexpected response",
		},
		{
			name:        "invalid json",
			err:         fmt.Errorf("decode response: %w", errors.New("invalid character '<'")),
			wantCode:    "DATA002",
			wantMessage: "The data service returned invalid JSON",
		},
		{
			name:        "table not found",
			err:         fmt.Errorf("%w: releases", ErrTableNotFound),
			wantCode:    "TBL001",
			wantMessage: "Table not found",
		},
		{
			name:        "invalid sort column",
			err:         ErrInvalidSortColumn,
			wantCode:    "TBL003",
			wantMessage: "That column cannot be sorted",
		},
		{
			name:        "invalid row",
			err:         ErrInvalidRow,
			wantCode:    "TBL004",
			wantMessage: "That row is no longer on the page",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DIAL TCP: CONNECTION REFUSED"),
			wantCode:    "NET001",
			wantMessage: "Unable to reach the data service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_HTTPStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
		wantMsg  string
	}{
		{401, "HTTP401", "Access to the data service was denied"},
		{403, "HTTP403", "Access to the data service was denied"},
		{404, "HTTP404", "The data endpoint was not found"},
		{502, "HTTP502", "The data service failed to respond"},
		{422, "HTTP422", "The data service rejected the request"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			err := fmt.Errorf("fetch: %w", &HTTPStatusError{StatusCode: tt.status, StatusText: "x"})
			got := MapError(err)
			if got.Code != tt.wantCode || got.Message != tt.wantMsg {
				t.Errorf("MapError(%d) = %+v, want %s %q", tt.status, got, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	result := FormatUserError(err)

	expected := "Unable to reach the data service (Code: NET001). Please try again in a few moments"
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
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrMissingData,
			want: true,
		},
		{
			name: "status error is user facing",
			err:  &HTTPStatusError{StatusCode: 500, StatusText: "Internal Server Error"},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorCodesAreDocumented(t *testing.T) {
	src, err := os.ReadFile("error_messages.go")
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	doc := string(src)

	codes := []string{defaultMessage.Code}
	for _, ep := range errorPatterns {
		codes = append(codes, ep.msg.Code)
	}
	for _, code := range codes {
		if !strings.Contains(doc, "//\t"+code+" - ") {
			t.Errorf("code %s is missing from the package reference", code)
		}
	}
}
