package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Collection names a record collection in the data store.
type Collection string

const (
	CollectionPrograms           Collection = "programs"
	CollectionShortlists         Collection = "shortlists"
	CollectionApplicationTracker Collection = "application_tracker"
)

// Well-known column names shared by every collection.
const (
	ColumnID        = "id"
	ColumnOwner     = "user_id"
	ColumnChecklist = "checklist"
	ColumnCreatedAt = "created_at"
)

// Row maps a header name to the raw cell text. Values are never typed at
// parse time.
type Row map[string]string

// Document is a parsed CSV text: ordered headers and aligned rows.
type Document struct {
	Headers []string
	Rows    []Row
}

// Record is a row ready for the store: owner attached, list fields
// normalized, cells converted to their column types.
type Record map[string]any

// FieldType represents the expected data type for a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldDate
	FieldUUID
	FieldList
)

// String returns a human-readable name for a field type.
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldDate:
		return "date"
	case FieldUUID:
		return "uuid"
	case FieldList:
		return "list"
	default:
		return "value"
	}
}

// FieldSpec defines validation and conversion rules for one column.
type FieldSpec struct {
	Name      string    // Column name, as written in the CSV header and the table
	Type      FieldType // Expected data type
	Required  bool      // Cell must be non-empty
	MaxLength int       // Maximum rune count for text cells, 0 for no limit
}

// CollectionInfo contains display information about a collection.
type CollectionInfo struct {
	Name    Collection `json:"name"`
	Label   string     `json:"label"`
	Columns []string   `json:"columns"` // Schema hint, in display order
}

// SchemaHint renders the column list the way the import page shows it.
func (i CollectionInfo) SchemaHint() string {
	return strings.Join(i.Columns, ", ")
}

// CollectionDefinition contains everything needed to import into a collection.
type CollectionDefinition struct {
	Info       CollectionInfo
	FieldSpecs []FieldSpec

	// ListColumns are normalized with the checklist parser before submission.
	ListColumns []string
}

// Spec returns the field spec for a column, matched case-insensitively.
func (d CollectionDefinition) Spec(column string) (FieldSpec, bool) {
	for _, spec := range d.FieldSpecs {
		if strings.EqualFold(spec.Name, column) {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

func (d CollectionDefinition) isListColumn(column string) bool {
	for _, c := range d.ListColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Caller identifies who an operation runs on behalf of. A zero Caller is
// unauthenticated.
type Caller struct {
	OwnerID string
	Email   string

	// Trusted callers may import rows whose user_id names another owner.
	// Only the command-line importer sets it; callers resolved from an
	// access token never are.
	Trusted bool
}

// MayWriteFor reports whether the caller may write a row owned by owner.
func (c Caller) MayWriteFor(owner string) bool {
	if c.Trusted {
		return true
	}
	a, errA := uuid.Parse(owner)
	b, errB := uuid.Parse(c.OwnerID)
	return errA == nil && errB == nil && a == b
}

// Authenticated reports whether the caller carries an owner identifier.
func (c Caller) Authenticated() bool {
	return c.OwnerID != ""
}

// ImportMode selects how rows are written to the store.
type ImportMode string

const (
	// ModePerRow writes rows in batches and isolates each row, so one bad
	// row is reported without failing the others.
	ModePerRow ImportMode = "per_row"

	// ModeAtomic writes every row in one bulk insert that succeeds or fails
	// as a unit.
	ModeAtomic ImportMode = "atomic"
)

// ParseImportMode maps a user-supplied mode to an ImportMode.
// Empty input selects ModePerRow.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePerRow:
		return ModePerRow, nil
	case ModeAtomic:
		return ModeAtomic, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", s)
	}
}

// ImportRequest describes one user-initiated import.
type ImportRequest struct {
	Collection Collection
	Document   Document
	FileName   string
	Mode       ImportMode
}

// RowFailure describes a row that was not written.
type RowFailure struct {
	Line   int    `json:"line"`   // 1-based data row number (header excluded)
	Reason string `json:"reason"` // Validation message or verbatim store error
}

// ImportResult is the outcome of one import.
type ImportResult struct {
	ImportID   string       `json:"importId"`
	Collection Collection   `json:"collection"`
	FileName   string       `json:"fileName,omitempty"`
	Mode       ImportMode   `json:"mode"`
	TotalRows  int          `json:"totalRows"`
	Inserted   int          `json:"inserted"`
	Failed     []RowFailure `json:"failed,omitempty"`

	// Error holds the store's message verbatim when the whole write failed.
	// In per-row mode batches written before the failure stay written and
	// are counted in Inserted.
	Error string `json:"error,omitempty"`
}

// Message renders the outcome as the single status line shown to the user.
func (r *ImportResult) Message() string {
	if r.Error != "" {
		if r.Inserted > 0 {
			return fmt.Sprintf("%s (%d rows imported before the failure)", r.Error, r.Inserted)
		}
		return r.Error
	}
	msg := fmt.Sprintf("Imported %d rows into %s.", r.Inserted, r.Collection)
	if n := len(r.Failed); n > 0 {
		msg += fmt.Sprintf(" %d rows failed.", n)
	}
	return msg
}

// InsertFailure reports a record the store rejected during a per-row write.
type InsertFailure struct {
	Index  int    // Position in the records slice passed to InsertRecords
	Reason string // Store error text, unmodified
}

// Store is the data store collaborator. Select, update and delete are
// scoped to the owner.
type Store interface {
	// InsertRecords writes records into collection. With ModeAtomic any
	// failure aborts the whole write and is returned as the error. With
	// ModePerRow rejected records are returned as failures and the rest
	// are committed; the error is reserved for failures of the write itself.
	InsertRecords(ctx context.Context, collection Collection, records []Record, mode ImportMode) ([]InsertFailure, error)

	SelectRecords(ctx context.Context, collection Collection, ownerID string, limit int) ([]Record, error)
	UpdateRecord(ctx context.Context, collection Collection, ownerID, id string, fields Record) (bool, error)
	DeleteRecord(ctx context.Context, collection Collection, ownerID, id string) (bool, error)
}
