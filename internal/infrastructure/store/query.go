package store

import (
	"context"
	"fmt"
	"regexp"
)

// Row is one record keyed by column name. Joined resources appear under their
// alias as a Row (or nil when the foreign row is absent).
type Row map[string]any

type Op string

const (
	OpEq     Op = "eq"
	OpNeq    Op = "neq"
	OpGt     Op = "gt"
	OpGte    Op = "gte"
	OpLt     Op = "lt"
	OpLte    Op = "lte"
	OpIn     Op = "in"
	OpIsNull Op = "is_null"
)

// Filter is one predicate. For OpIn, Value is a []any; for OpIsNull, Value is
// a bool selecting IS NULL (true) or IS NOT NULL (false).
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter    { return Filter{Column: column, Op: OpEq, Value: value} }
func Gte(column string, value any) Filter   { return Filter{Column: column, Op: OpGte, Value: value} }
func Lte(column string, value any) Filter   { return Filter{Column: column, Op: OpLte, Value: value} }
func In(column string, values []any) Filter { return Filter{Column: column, Op: OpIn, Value: values} }
func IsNull(column string) Filter           { return Filter{Column: column, Op: OpIsNull, Value: true} }

type Order struct {
	Column string
	Desc   bool
}

// Join is a one-level nested projection: for each row, the Table row whose
// ForeignKey equals the row's LocalKey is attached under Alias.
type Join struct {
	Alias      string
	Table      string
	LocalKey   string
	ForeignKey string
	Columns    []string
}

// Query is a single select against one table.
type Query struct {
	Table   string
	Columns []string
	Joins   []Join
	Where   []Filter
	Order   []Order
	Limit   int
}

// Selector is the read port every driver implements. Drivers do not retry.
type Selector interface {
	Select(ctx context.Context, q Query) ([]Row, error)
}

// Appender writes append-only telemetry rows.
type Appender interface {
	Append(ctx context.Context, table string, rows []Row) error
}

// Store is a driver that can both read and append.
type Store interface {
	Selector
	Appender
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validIdent(name string) bool {
	return identPattern.MatchString(name)
}

// Validate rejects malformed queries before they reach a driver. Failures are permanent.
func (q Query) Validate() error {
	if !validIdent(q.Table) {
		return Permanent(fmt.Errorf("invalid table %q", q.Table))
	}
	if len(q.Columns) == 0 {
		return Permanent(fmt.Errorf("select %s: columns are required", q.Table))
	}
	for _, col := range q.Columns {
		if !validIdent(col) {
			return Permanent(fmt.Errorf("select %s: invalid column %q", q.Table, col))
		}
	}
	for _, j := range q.Joins {
		if !validIdent(j.Alias) || !validIdent(j.Table) || !validIdent(j.LocalKey) || !validIdent(j.ForeignKey) {
			return Permanent(fmt.Errorf("select %s: invalid join %+v", q.Table, j))
		}
		if len(j.Columns) == 0 {
			return Permanent(fmt.Errorf("select %s: join %s has no columns", q.Table, j.Alias))
		}
		for _, col := range j.Columns {
			if !validIdent(col) {
				return Permanent(fmt.Errorf("select %s: join %s invalid column %q", q.Table, j.Alias, col))
			}
		}
	}
	for _, f := range q.Where {
		if !validIdent(f.Column) {
			return Permanent(fmt.Errorf("select %s: invalid filter column %q", q.Table, f.Column))
		}
		switch f.Op {
		case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		case OpIn:
			if _, ok := f.Value.([]any); !ok {
				return Permanent(fmt.Errorf("select %s: in filter on %s needs []any", q.Table, f.Column))
			}
		case OpIsNull:
			if _, ok := f.Value.(bool); !ok {
				return Permanent(fmt.Errorf("select %s: is_null filter on %s needs bool", q.Table, f.Column))
			}
		default:
			return Permanent(fmt.Errorf("select %s: unknown operator %q", q.Table, f.Op))
		}
	}
	for _, o := range q.Order {
		if !validIdent(o.Column) {
			return Permanent(fmt.Errorf("select %s: invalid order column %q", q.Table, o.Column))
		}
	}
	if q.Limit < 0 {
		return Permanent(fmt.Errorf("select %s: limit must be >= 0", q.Table))
	}
	return nil
}

func validateAppend(table string, rows []Row) error {
	if !validIdent(table) {
		return Permanent(fmt.Errorf("invalid table %q", table))
	}
	for _, row := range rows {
		for col := range row {
			if !validIdent(col) {
				return Permanent(fmt.Errorf("append %s: invalid column %q", table, col))
			}
		}
	}
	return nil
}
