package core

// Error codes reference.
//
// Technical errors are mapped to user-facing messages with a code that can be
// quoted to whoever operates the service. Sentinel errors are matched first
// with errors.Is; anything else is matched by case-insensitive substring,
// first match wins.
//
//	IMP001  No rows detected in CSV              ErrNoRows
//	IMP002  Import already running               ErrImportInProgress
//	IMP003  System busy                          ErrTooManyImports
//	IMP004  Columns do not fit the collection    ErrInvalidHeaders
//	IMP005  Unknown import mode                  "unknown import mode"
//	AUTH001 Sign in first to import.             ErrUnauthenticated
//	TBL001  Unknown collection                   ErrUnknownCollection
//	DB001   Duplicate record                     "duplicate key"
//	DB002   Referenced record missing            "foreign key"
//	DB003   Value has the wrong format           "invalid input syntax"
//	DB004   Database unavailable                 "connection refused"
//	DB005   Record not found                     ErrNotFound
//	REC001  Record fields rejected               ErrInvalidRecord
//	FILE001 File too large                       "request body too large"
//	FILE002 No file or text                      "no csv provided"
//	FILE003 Unsupported file type                "unsupported file type"
//	FILE004 Unreadable spreadsheet               "read spreadsheet"
//	REQ001  Request cancelled                    "context canceled"
//	REQ002  Request timed out                    "context deadline exceeded"
//	RATE001 Too many requests                    "rate limit"
//	ERR000  Fallback

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Reference code
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrUnauthenticated, UserMessage{MsgSignInFirst, "Sign in and retry the import", "AUTH001"}},
	{ErrNoRows, UserMessage{MsgNoRows, "Add at least one data row below the header", "IMP001"}},
	{ErrImportInProgress, UserMessage{"An import is already running", "Wait for it to finish", "IMP002"}},
	{ErrTooManyImports, UserMessage{"System busy", "Please wait a moment and try again", "IMP003"}},
	{ErrInvalidHeaders, UserMessage{"CSV columns do not fit the selected collection", "Compare the header row with the column hint", "IMP004"}},
	{ErrUnknownCollection, UserMessage{"Unknown collection", "Choose programs, shortlists or application_tracker", "TBL001"}},
	{ErrNotFound, UserMessage{"Record not found", "Refresh the list and try again", "DB005"}},
	{ErrInvalidRecord, UserMessage{"Some fields could not be saved", "Check the column names and values", "REC001"}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{"A record with this key already exists", "Remove duplicate rows and retry", "DB001"}},
	{"foreign key", UserMessage{"A referenced record does not exist", "Create the referenced record first", "DB002"}},
	{"invalid input syntax", UserMessage{"A value has the wrong format", "Check dates and ids in the failing rows", "DB003"}},
	{"connection refused", UserMessage{"Database unavailable", "Please try again in a few moments", "DB004"}},
	{"unknown import mode", UserMessage{"Unknown import mode", "Use per_row or atomic", "IMP005"}},
	{"request body too large", UserMessage{"File too large", "Split the file into smaller parts", "FILE001"}},
	{"no csv provided", UserMessage{"No CSV file or text was provided", "Choose a .csv file or paste CSV text", "FILE002"}},
	{"unsupported file type", UserMessage{"Unsupported file type", "Upload a .csv or .xlsx file", "FILE003"}},
	{"read spreadsheet", UserMessage{"The spreadsheet could not be read", "Save it again as .xlsx or export it as CSV", "FILE004"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "REQ001"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "REQ002"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
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

// FormatUserError renders "Message (Code: XXX). Action".
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

// StatusLine is the single line of status text for an import attempt: the
// result message on success, the fixed message for local refusals, or the
// error text itself otherwise.
func StatusLine(res *ImportResult, err error) string {
	if err == nil {
		if res == nil {
			return ""
		}
		return res.Message()
	}
	if IsUserFacing(err) {
		return MapError(err).Message
	}
	return err.Error()
}
