package core

import "errors"

// Status lines shown verbatim to the person running an import.
const (
	MsgSignInFirst = "Sign in first to import."
	MsgNoRows      = "No rows detected in CSV."
)

var (
	// ErrUnknownCollection is returned for a collection name that is not registered.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnauthenticated is returned when an operation needs an owner id and
	// the caller has none. It is detected before any store call.
	ErrUnauthenticated = errors.New("unauthenticated: sign in first")

	// ErrNoRows is returned when an import is requested without data rows.
	// It is detected before any store call.
	ErrNoRows = errors.New("no rows detected in CSV")

	// ErrImportInProgress is returned when the caller already has an import
	// running. Imports are not queued.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrTooManyImports is returned when every import slot stays occupied
	// for the whole wait time.
	ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

	// ErrInvalidHeaders is returned when the header row does not fit the
	// collection's columns.
	ErrInvalidHeaders = errors.New("invalid headers")

	// ErrNotFound is returned when an owner-scoped record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when an update names unknown columns or
	// carries values that fail validation.
	ErrInvalidRecord = errors.New("invalid record")
)
