// Package querybuilder renders the small subset of Postgres SQL the store
// driver needs: filtered selects and multi-row inserts with $n placeholders.
package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and its positional arguments together so
// placeholder numbers always match the argument order.
type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(v any) {
	w.args = append(w.args, v)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

func (w *sqlWriter) list(prefix string, parts []string) {
	if len(parts) == 0 {
		return
	}
	w.WriteString(prefix)
	w.WriteString(strings.Join(parts, ", "))
}

// Condition is one predicate of a WHERE clause. Conditions are ANDed.
type Condition interface {
	render(w *sqlWriter)
}

// Operator is a binary SQL comparison operator.
type Operator string

const (
	OpEq  Operator = "="
	OpNeq Operator = "<>"
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

func (op Operator) valid() bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

type comparison struct {
	column string
	op     Operator
	value  any
}

func (c comparison) render(w *sqlWriter) {
	w.WriteString(c.column)
	w.WriteString(" " + string(c.op) + " ")
	w.bind(c.value)
}

// Compare renders "column op $n". Unknown operators fall back to equality.
func Compare(column string, op Operator, value any) Condition {
	if !op.valid() {
		op = OpEq
	}
	return comparison{column: column, op: op, value: value}
}

func Eq(column string, value any) Condition {
	return comparison{column: column, op: OpEq, value: value}
}

type inCondition struct {
	column string
	values []any
}

// In matches any of values. An empty list never matches.
func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func (c inCondition) render(w *sqlWriter) {
	if len(c.values) == 0 {
		w.WriteString("1=0")
		return
	}
	w.WriteString(c.column + " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteString(")")
}

type nullCheck struct {
	column string
	null   bool
}

func (c nullCheck) render(w *sqlWriter) {
	w.WriteString(c.column)
	if c.null {
		w.WriteString(" IS NULL")
		return
	}
	w.WriteString(" IS NOT NULL")
}

func IsNull(column string) Condition    { return nullCheck{column: column, null: true} }
func IsNotNull(column string) Condition { return nullCheck{column: column} }

// SelectBuilder builds "SELECT ... FROM table [AS alias] [WHERE] [ORDER BY] [LIMIT]".
type SelectBuilder struct {
	columns []string
	table   string
	alias   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// As aliases the FROM table so correlated sub-selects can reference it.
func (b *SelectBuilder) As(alias string) *SelectBuilder {
	b.alias = alias
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit caps the row count. Zero or less means no limit.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errors.New("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errors.New("select table is required")
	}

	var w sqlWriter
	w.list("SELECT ", b.columns)
	w.WriteString(" FROM " + b.table)
	if b.alias != "" {
		w.WriteString(" AS " + b.alias)
	}
	for i, c := range b.where {
		if i == 0 {
			w.WriteString(" WHERE ")
		} else {
			w.WriteString(" AND ")
		}
		c.render(&w)
	}
	w.list(" ORDER BY ", b.orderBy)
	if b.limit > 0 {
		w.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}

	return w.String(), w.args, nil
}

// InsertBuilder builds one multi-row "INSERT INTO table (...) VALUES (...), (...)".
type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values appends one row; it must match the column count.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("insert table is required")
	case len(b.columns) == 0:
		return "", nil, errors.New("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, errors.New("insert values are required")
	}

	w := sqlWriter{args: make([]any, 0, len(b.rows)*len(b.columns))}
	w.WriteString("INSERT INTO " + b.table + " (")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString("(")
		for j, v := range row {
			if j > 0 {
				w.WriteString(", ")
			}
			w.bind(v)
		}
		w.WriteString(")")
	}

	return w.String(), w.args, nil
}
