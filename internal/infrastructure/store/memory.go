package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process driver used in dev and tests. Joins are composed
// with a follow-up keyed select against the joined table.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Row
	errs   map[string]error
	calls  map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]Row),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// Seed replaces the rows of table.
func (m *Memory) Seed(table string, rows []Row) {
	copied := make([]Row, 0, len(rows))
	for _, row := range rows {
		copied = append(copied, cloneRow(row))
	}

	m.mu.Lock()
	m.tables[table] = copied
	m.mu.Unlock()
}

// SetError makes every select against table fail with err until cleared with nil.
func (m *Memory) SetError(table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, table)
		return
	}
	m.errs[table] = err
}

// Calls reports how many selects hit table.
func (m *Memory) Calls(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[table]
}

// Rows returns a copy of table, used to inspect appended telemetry.
func (m *Memory) Rows(table string) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Row, 0, len(m.tables[table]))
	for _, row := range m.tables[table] {
		out = append(out, cloneRow(row))
	}
	return out
}

func (m *Memory) Select(ctx context.Context, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Transient(err)
	}

	rows, err := m.scan(q.Table, q.Where)
	if err != nil {
		return nil, err
	}

	sortRows(rows, q.Order)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, project(row, q.Columns))
	}

	for _, j := range q.Joins {
		if err := m.attach(ctx, rows, out, j); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *Memory) scan(table string, where []Filter) ([]Row, error) {
	m.mu.Lock()
	m.calls[table]++
	err := m.errs[table]
	source, ok := m.tables[table]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Permanent(fmt.Errorf("relation %q does not exist", table))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Row, 0, len(source))
	for _, row := range source {
		if matchAll(row, where) {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}

// attach resolves one join for every parent row with a single keyed select.
func (m *Memory) attach(ctx context.Context, parents []Row, out []Row, j Join) error {
	keys := make([]any, 0, len(parents))
	seen := make(map[string]struct{}, len(parents))
	for _, parent := range parents {
		v, ok := parent[j.LocalKey]
		if !ok || v == nil {
			continue
		}
		k := keyString(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, v)
	}

	columns := append([]string(nil), j.Columns...)
	hasForeign := false
	for _, col := range columns {
		if col == j.ForeignKey {
			hasForeign = true
		}
	}
	if !hasForeign {
		columns = append(columns, j.ForeignKey)
	}

	children, err := m.Select(ctx, Query{
		Table:   j.Table,
		Columns: columns,
		Where:   []Filter{In(j.ForeignKey, keys)},
	})
	if err != nil {
		return err
	}

	byKey := make(map[string]Row, len(children))
	for _, child := range children {
		k := keyString(child[j.ForeignKey])
		if _, exists := byKey[k]; !exists {
			byKey[k] = project(child, j.Columns)
		}
	}

	for i, parent := range parents {
		v, ok := parent[j.LocalKey]
		if !ok || v == nil {
			out[i][j.Alias] = nil
			continue
		}
		if child, ok := byKey[keyString(v)]; ok {
			out[i][j.Alias] = child
		} else {
			out[i][j.Alias] = nil
		}
	}
	return nil
}

func (m *Memory) Append(ctx context.Context, table string, rows []Row) error {
	if err := validateAppend(table, rows); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return Transient(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[table]; err != nil {
		return err
	}
	for _, row := range rows {
		m.tables[table] = append(m.tables[table], cloneRow(row))
	}
	return nil
}

func matchAll(row Row, where []Filter) bool {
	for _, f := range where {
		if !match(row, f) {
			return false
		}
	}
	return true
}

func match(row Row, f Filter) bool {
	v := row[f.Column]
	switch f.Op {
	case OpIsNull:
		want, _ := f.Value.(bool)
		return (v == nil) == want
	case OpIn:
		values, _ := f.Value.([]any)
		for _, candidate := range values {
			if cmp, ok := compare(v, candidate); ok && cmp == 0 {
				return true
			}
		}
		return false
	}

	cmp, ok := compare(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEq:
		return cmp == 0
	case OpNeq:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	default:
		return false
	}
}

// sortRows orders rows by each key in turn. NULLs sort last in both directions.
func sortRows(rows []Row, order []Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			a, b := rows[i][o.Column], rows[j][o.Column]
			switch {
			case a == nil && b == nil:
				continue
			case a == nil:
				return false
			case b == nil:
				return true
			}
			cmp, ok := compare(a, b)
			if !ok || cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compare orders two scalar values of compatible kinds.
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func keyString(v any) string {
	if f, ok := toFloat(v); ok {
		return fmt.Sprintf("n:%v", f)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func project(row Row, columns []string) Row {
	out := make(Row, len(columns))
	for _, col := range columns {
		out[col] = row[col]
	}
	return out
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
