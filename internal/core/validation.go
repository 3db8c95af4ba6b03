package core

// validation.go checks a parsed document against a collection's columns
// before anything is written.
//
// Validation happens at two levels:
//  1. Header validation: unknown, duplicate and missing required columns.
//     Any header error refuses the whole import.
//  2. Row validation: each cell against its FieldSpec. Invalid rows are
//     reported with their line number and left out of the write.

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// RowIssues lists the problems found in one data row.
type RowIssues struct {
	Line   int               `json:"line"`
	Errors []ValidationError `json:"errors"`
}

// Reason joins the row's errors into one failure reason.
func (r RowIssues) Reason() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// ValidationReport is the result of validating a document.
type ValidationReport struct {
	HeaderErrors []ValidationError `json:"headerErrors,omitempty"`
	Rows         []RowIssues       `json:"rows,omitempty"`
}

// Valid reports whether neither the headers nor any row had problems.
func (r ValidationReport) Valid() bool {
	return len(r.HeaderErrors) == 0 && len(r.Rows) == 0
}

// HeaderError joins the header problems into an error wrapping
// ErrInvalidHeaders, or returns nil when the headers are fine.
func (r ValidationReport) HeaderError() error {
	if len(r.HeaderErrors) == 0 {
		return nil
	}
	parts := make([]string, len(r.HeaderErrors))
	for i, e := range r.HeaderErrors {
		parts[i] = e.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidHeaders, strings.Join(parts, "; "))
}

// invalidLines indexes the rows that failed validation by line number.
func (r ValidationReport) invalidLines() map[int]RowIssues {
	idx := make(map[int]RowIssues, len(r.Rows))
	for _, ri := range r.Rows {
		idx[ri.Line] = ri
	}
	return idx
}

// ValidateDocument validates doc against def.
// Row line numbers are 1-based and count data rows only.
func ValidateDocument(def CollectionDefinition, doc Document) ValidationReport {
	report := ValidationReport{HeaderErrors: ValidateHeaders(def, doc.Headers)}

	for i, row := range doc.Rows {
		if errs := ValidateRow(def, row); len(errs) > 0 {
			report.Rows = append(report.Rows, RowIssues{Line: i + 1, Errors: errs})
		}
	}

	return report
}

// ValidateHeaders reports unknown, duplicate and missing required columns.
func ValidateHeaders(def CollectionDefinition, headers []string) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(headers))

	for _, h := range headers {
		if h == "" {
			errs = append(errs, ValidationError{Message: "empty column name"})
			continue
		}
		spec, ok := def.Spec(h)
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Field:   h,
				Message: fmt.Sprintf("unknown column for %s (expected: %s)", def.Info.Name, def.Info.SchemaHint()),
			})
		case seen[spec.Name]:
			errs = append(errs, ValidationError{Field: h, Message: "duplicate column"})
		default:
			seen[spec.Name] = true
		}
	}

	for _, spec := range def.FieldSpecs {
		if spec.Required && !seen[spec.Name] {
			errs = append(errs, ValidationError{Field: spec.Name, Message: "missing required column"})
		}
	}

	return errs
}

// ValidateRow checks each known cell of row against its FieldSpec.
// Unknown columns are left to ValidateHeaders.
func ValidateRow(def CollectionDefinition, row Row) []ValidationError {
	var errs []ValidationError

	for col, raw := range row {
		spec, ok := def.Spec(col)
		if !ok {
			continue
		}
		if err := ValidateCell(spec, raw); err != nil {
			errs = append(errs, ValidationError{Field: spec.Name, Value: raw, Message: err.Error()})
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return errs
}

// ValidateCell validates a single cell against a field specification.
// Empty optional cells are valid and are written as NULL or an empty list.
func ValidateCell(spec FieldSpec, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if spec.Required {
			return fmt.Errorf("required field is empty")
		}
		return nil
	}

	if spec.MaxLength > 0 && utf8.RuneCountInString(value) > spec.MaxLength {
		return fmt.Errorf("longer than %d characters", spec.MaxLength)
	}

	switch spec.Type {
	case FieldDate:
		if !ToPgDate(value).Valid {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD or DD.MM.YYYY)")
		}
	case FieldUUID:
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Errorf("invalid uuid")
		}
	}
	return nil
}
