package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/jackc/pgx/v5"
)

// maxParams is PostgreSQL's limit on bind parameters per statement.
const maxParams = 65535

func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// recordColumns returns the sorted union of column names across records.
func recordColumns(records []core.Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for col := range rec {
			seen[col] = struct{}{}
		}
	}

	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// buildInsert renders a multi-row INSERT for rows records over columns and
// returns it with its arguments. Columns missing from a record bind NULL.
func buildInsert(table string, columns []string, records []core.Record) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(columns)*len(records))

	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdentifier(table))
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdentifier(col))
	}
	b.WriteString(") VALUES ")

	for r, rec := range records {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for i, col := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			args = append(args, rec[col])
			fmt.Fprintf(&b, "$%d", len(args))
		}
		b.WriteByte(')')
	}

	return b.String(), args
}

// chunkRecords splits records so that no INSERT exceeds maxParams.
func chunkRecords(records []core.Record, columns int) [][]core.Record {
	if columns == 0 {
		columns = 1
	}
	size := maxParams / columns

	var chunks [][]core.Record
	for start := 0; start < len(records); start += size {
		chunks = append(chunks, records[start:min(start+size, len(records))])
	}
	return chunks
}

// selectColumn renders one output column. UUID and date columns are cast to
// text so rows come back as plain JSON-friendly values.
func selectColumn(spec core.FieldSpec) string {
	col := quoteIdentifier(spec.Name)
	switch spec.Type {
	case core.FieldUUID, core.FieldDate:
		return col + "::text AS " + col
	default:
		return col
	}
}

func buildSelect(def core.CollectionDefinition) string {
	cols := []string{quoteIdentifier(core.ColumnID) + "::text AS " + quoteIdentifier(core.ColumnID)}
	for _, spec := range def.FieldSpecs {
		cols = append(cols, selectColumn(spec))
	}
	cols = append(cols, quoteIdentifier(core.ColumnCreatedAt))

	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2",
		strings.Join(cols, ", "),
		quoteIdentifier(string(def.Info.Name)),
		quoteIdentifier(core.ColumnOwner),
		quoteIdentifier(core.ColumnCreatedAt),
	)
}

// buildUpdate renders an owner-scoped UPDATE of fields. The id and owner
// bind after the field values.
func buildUpdate(table string, fields core.Record) (string, []any) {
	cols := recordColumns([]core.Record{fields})
	sets := make([]string, len(cols))
	args := make([]any, len(cols), len(cols)+2)
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdentifier(col), i+1)
		args[i] = fields[col]
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d AND %s = $%d",
		quoteIdentifier(table),
		strings.Join(sets, ", "),
		quoteIdentifier(core.ColumnID), len(cols)+1,
		quoteIdentifier(core.ColumnOwner), len(cols)+2,
	)
	return sql, args
}

func buildDelete(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
		quoteIdentifier(table),
		quoteIdentifier(core.ColumnID),
		quoteIdentifier(core.ColumnOwner),
	)
}
