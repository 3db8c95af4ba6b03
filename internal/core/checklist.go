package core

import (
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultChecklistDelimiter separates items in a plain checklist cell.
const DefaultChecklistDelimiter = ";"

// ChecklistParser turns a checklist cell into an ordered list of items.
//
// Precedence, on the trimmed cell:
//
//  1. Empty text is an empty list.
//  2. Text starting with '[' or '{' is read as JSON after single quotes are
//     rewritten to double quotes. A JSON array yields its elements as-is.
//     Valid JSON that is not an array is not a list and falls to rule 3.
//     Text that is not valid JSON has all brackets and braces removed, is
//     split on commas and stripped of double quotes; it never reaches rule 3.
//  3. Anything else is split on Delimiter.
//
// Rules 2 and 3 drop empty items after trimming.
type ChecklistParser struct {
	Delimiter string
}

// NewChecklistParser returns a parser splitting plain cells on delim, or on
// DefaultChecklistDelimiter when delim is empty.
func NewChecklistParser(delim string) ChecklistParser {
	if delim == "" {
		delim = DefaultChecklistDelimiter
	}
	return ChecklistParser{Delimiter: delim}
}

// ParseChecklist parses raw with the default delimiter.
func ParseChecklist(raw string) []string {
	return NewChecklistParser(DefaultChecklistDelimiter).Parse(raw)
}

// Parse applies the precedence rules to raw. The result is never nil.
func (p ChecklistParser) Parse(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return []string{}
	}

	if text[0] == '[' || text[0] == '{' {
		candidate := strings.ReplaceAll(text, "'", `"`)
		if !gjson.Valid(candidate) {
			return splitBracketed(text)
		}
		if parsed := gjson.Parse(candidate); parsed.IsArray() {
			items := []string{}
			parsed.ForEach(func(_, v gjson.Result) bool {
				if v.Type == gjson.String {
					items = append(items, v.Str)
				} else {
					items = append(items, v.Raw)
				}
				return true
			})
			return items
		}
	}

	delim := p.Delimiter
	if delim == "" {
		delim = DefaultChecklistDelimiter
	}
	return splitTrimmed(text, delim, nil)
}

var bracketStripper = strings.NewReplacer("[", "", "]", "", "{", "", "}", "")

// splitBracketed recovers items from bracketed text that is not valid JSON.
func splitBracketed(text string) []string {
	return splitTrimmed(bracketStripper.Replace(text), ",", func(s string) string {
		return strings.ReplaceAll(s, `"`, "")
	})
}

func splitTrimmed(text, sep string, clean func(string) string) []string {
	items := []string{}
	for _, part := range strings.Split(text, sep) {
		if clean != nil {
			part = clean(part)
		}
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
