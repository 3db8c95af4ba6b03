package core

import "strings"

// ParseDocument splits CSV text into headers and rows.
//
// A leading byte order mark is dropped. Lines are split on \n or \r\n and
// trimmed; blank lines are dropped
// wherever they occur. The first remaining line is the header. Each data
// row is aligned to the header on its own: missing trailing cells become
// "" and surplus cells are dropped. Text without any non-blank line yields
// an empty Document.
func ParseDocument(text string) Document {
	text = strings.TrimPrefix(text, "\ufeff")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return Document{Headers: []string{}, Rows: []Row{}}
	}

	headers := SplitLine(lines[0])
	for i, h := range headers {
		headers[i] = stripEnclosingQuote(h)
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, alignRow(headers, SplitLine(line)))
	}

	return Document{Headers: headers, Rows: rows}
}

// NewDocument builds a Document from already-split records, as read from a
// spreadsheet. The first non-blank record is the header; alignment follows
// ParseDocument.
func NewDocument(records [][]string) Document {
	var kept [][]string
	for _, rec := range records {
		if !isBlankRecord(rec) {
			kept = append(kept, rec)
		}
	}

	if len(kept) == 0 {
		return Document{Headers: []string{}, Rows: []Row{}}
	}

	headers := make([]string, len(kept[0]))
	for i, h := range kept[0] {
		headers[i] = stripEnclosingQuote(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(kept)-1)
	for _, rec := range kept[1:] {
		values := make([]string, len(rec))
		for i, v := range rec {
			values[i] = strings.TrimSpace(v)
		}
		rows = append(rows, alignRow(headers, values))
	}

	return Document{Headers: headers, Rows: rows}
}

// HasColumn reports whether the header row contains name.
func (d Document) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

func alignRow(headers, values []string) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		if i < len(values) {
			row[h] = stripEnclosingQuote(values[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

// stripEnclosingQuote removes one leading and one trailing double quote.
func stripEnclosingQuote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
