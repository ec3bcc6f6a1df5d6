// Package core provides the business logic for reconciliation runs.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When a run fails, the HTTP API and the CLI show the code so the failure can
// be looked up here.
//
// Error codes are grouped by category:
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Unknown source: No source is registered under this key
//	         Action: List the configured sources and check the key
//	         Patterns: "unknown source"
//
//	SRC002 - Missing file: A source CSV file does not exist
//	         Action: Check DATA_DIR and the file names in the source manifest
//	         Patterns: "source file not found"
//
//	SRC003 - Invalid manifest: The source manifest could not be used
//	         Action: Fix the manifest; every source needs key, file and key_column
//	         Patterns: "invalid source manifest"
//
//	SRC004 - Invalid alias file: The country alias file could not be used
//	         Action: Fix the alias file; every alias needs a canonical name
//	         Patterns: "alias file"
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Column not found: A configured column is missing from a source
//	         Action: Compare the source's header with its key_column and columns
//	         Patterns: "column not found"
//
//	SCH002 - Key collision: A source already has a "country" column besides its key
//	         Action: Use "country" as the key column or drop the other column
//	         Patterns: "would collide"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Invalid CSV: A source file is not a valid CSV
//	          Action: Ensure the file is comma-separated with consistent columns
//	          Patterns: "invalid csv"
//
//	FILE002 - Empty file: A source file has no header
//	          Action: Replace the file with a CSV that has a header row
//	          Patterns: "empty file"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many runs in progress
//	         Action: Wait for the current run to finish and try again
//	         Patterns: "too many concurrent runs"
//
//	RUN002 - No result: No run has completed yet
//	         Action: Start a run first
//	         Patterns: "no completed run"
//
//	RUN003 - No sources: The run had no source tables
//	         Action: Register at least one source or fix the manifest
//	         Patterns: "no source tables"
//
//	RUN004 - Country not found: The country is not in the latest result
//	         Action: Check the spelling; aliases are resolved automatically
//	         Patterns: "country not found"
//
//	RUN005 - Request cancelled: The run was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	RUN006 - Run timeout: The run did not finish in time
//	         Action: Raise RUN_TIMEOUT or check the size of the source files
//	         Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB003 - Timeout: Operation timed out
//	        Action: Please try again later
//	        Patterns: "timeout"
//
// # Sink Errors (SINK001-SINK099)
//
//	SINK001 - Sink failed: The result could not be written to a destination
//	          Action: Check the sink path or connection and rerun
//	          Patterns: "write sink"
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Missing key: The request did not include an API key
//	          Action: Send the key in the X-API-Key header
//	          Patterns: "missing api key"
//
//	AUTH002 - Invalid key: The API key was not accepted
//	          Action: Check the key with the server operator
//	          Patterns: "invalid api key"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Source Errors (SRC001-SRC004)
	// =========================================================================
	{
		pattern: "unknown source",
		msg: UserMessage{
			Message: "No source is registered under this key",
			Action:  "List the configured sources and check the key",
			Code:    "SRC001",
		},
	},
	{
		pattern: "source file not found",
		msg: UserMessage{
			Message: "A source CSV file does not exist",
			Action:  "Check DATA_DIR and the file names in the source manifest",
			Code:    "SRC002",
		},
	},
	{
		pattern: "invalid source manifest",
		msg: UserMessage{
			Message: "The source manifest could not be used",
			Action:  "Fix the manifest; every source needs key, file and key_column",
			Code:    "SRC003",
		},
	},
	{
		pattern: "alias file",
		msg: UserMessage{
			Message: "The country alias file could not be used",
			Action:  "Fix the alias file; every alias needs a canonical name",
			Code:    "SRC004",
		},
	},

	// =========================================================================
	// Schema Errors (SCH001-SCH002)
	// =========================================================================
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A configured column is missing from a source",
			Action:  "Compare the source's header with its key_column and columns",
			Code:    "SCH001",
		},
	},
	{
		pattern: "would collide",
		msg: UserMessage{
			Message: `A source already has a "country" column besides its key`,
			Action:  `Use "country" as the key column or drop the other column`,
			Code:    "SCH002",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE002)
	// =========================================================================
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "A source file is not a valid CSV",
			Action:  "Ensure the file is comma-separated with consistent columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "A source file has no header",
			Action:  "Replace the file with a CSV that has a header row",
			Code:    "FILE002",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN006)
	// =========================================================================
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy with other runs",
			Action:  "Wait for the current run to finish and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "no completed run",
		msg: UserMessage{
			Message: "No run has completed yet",
			Action:  "Start a run first",
			Code:    "RUN002",
		},
	},
	{
		pattern: "no source tables",
		msg: UserMessage{
			Message: "The run had no source tables",
			Action:  "Register at least one source or fix the manifest",
			Code:    "RUN003",
		},
	},
	{
		pattern: "country not found",
		msg: UserMessage{
			Message: "The country is not in the latest result",
			Action:  "Check the spelling; aliases are resolved automatically",
			Code:    "RUN004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was cancelled",
			Action:  "Please try again",
			Code:    "RUN005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The run did not finish in time",
			Action:  "Raise RUN_TIMEOUT or check the size of the source files",
			Code:    "RUN006",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Sink Errors (SINK001)
	// =========================================================================
	{
		pattern: "write sink",
		msg: UserMessage{
			Message: "The result could not be written to a destination",
			Action:  "Check the sink path or connection and rerun",
			Code:    "SINK001",
		},
	},

	// =========================================================================
	// Authentication Errors (AUTH001-AUTH002)
	// =========================================================================
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "The request did not include an API key",
			Action:  "Send the key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "The API key was not accepted",
			Action:  "Check the key with the server operator",
			Code:    "AUTH002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
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
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := &reconcile.SchemaError{Source: "whr", Column: "Country name"}
//	msg := MapError(err)
//	// msg.Code == "SCH001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
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
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
