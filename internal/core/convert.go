package core

// convert.go turns raw cells into values the store can write.
//
// All ToPg* functions return pgtype values with Valid=false for empty or
// unparseable input, so optional columns are written as NULL.

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// to the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "2.1.06", "02.01.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2.1.2006", "02.01.2006", // German day-first with dots
		"1/2/2006", "01/02/2006",
		"Jan 2, 2006", "2 Jan 2006", "2 January 2006", "January 2, 2006",
		time.RFC3339,
	}
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a string to pgtype.Date.
// ISO and German dotted dates are tried before US slashed dates.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{}
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// ConvertCell converts a raw cell to the Go value written for spec's column.
// List columns are parsed with checklist.
func ConvertCell(spec FieldSpec, raw string, checklist ChecklistParser) any {
	switch spec.Type {
	case FieldDate:
		return ToPgDate(raw)
	case FieldUUID:
		return ToPgUUID(raw)
	case FieldList:
		return checklist.Parse(raw)
	default:
		return ToPgText(raw)
	}
}

// BuildRecord converts a parsed row into a Record for def.
//
// The owner is the row's own non-empty user_id cell, falling back to
// ownerID. Columns without a FieldSpec are skipped; validation reports them.
func BuildRecord(def CollectionDefinition, row Row, ownerID string, checklist ChecklistParser) Record {
	rec := make(Record, len(row)+1)

	for col, raw := range row {
		spec, ok := def.Spec(col)
		if !ok || spec.Name == ColumnOwner {
			continue
		}
		if def.isListColumn(spec.Name) {
			spec.Type = FieldList
		}
		rec[spec.Name] = ConvertCell(spec, raw, checklist)
	}

	rec[ColumnOwner] = ToPgUUID(OwnerOf(row, ownerID))

	return rec
}

// OwnerOf returns the owner id that BuildRecord would attach to row.
func OwnerOf(row Row, ownerID string) string {
	for col, v := range row {
		if !strings.EqualFold(col, ColumnOwner) {
			continue
		}
		if owner := strings.TrimSpace(v); owner != "" {
			return owner
		}
	}
	return ownerID
}
