package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	qb "github.com/riskibarqy/fpl-companion/internal/platform/querybuilder"
)

const baseAlias = "t"

// Postgres reads the tabular schema directly. Joins are composed in the same
// round trip as correlated to_jsonb sub-selects.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Select(ctx context.Context, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query, args, err := buildSelectSQL(q)
	if err != nil {
		return nil, Permanent(fmt.Errorf("build select %s query: %w", q.Table, err))
	}

	rows, err := p.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, classifySQL(fmt.Errorf("select %s: %w", q.Table, err))
	}
	defer rows.Close()

	joins := make(map[string]struct{}, len(q.Joins))
	for _, j := range q.Joins {
		joins[j.Alias] = struct{}{}
	}

	out := make([]Row, 0)
	for rows.Next() {
		raw := make(map[string]any, len(q.Columns)+len(q.Joins))
		if err := rows.MapScan(raw); err != nil {
			return nil, classifySQL(fmt.Errorf("scan %s row: %w", q.Table, err))
		}
		row, err := normalizeSQLRow(raw, joins)
		if err != nil {
			return nil, Permanent(fmt.Errorf("decode %s row: %w", q.Table, err))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySQL(fmt.Errorf("iterate %s rows: %w", q.Table, err))
	}
	return out, nil
}

func (p *Postgres) Append(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := validateAppend(table, rows); err != nil {
		return err
	}

	query, args, err := buildInsertSQL(table, rows)
	if err != nil {
		return Permanent(fmt.Errorf("build insert %s query: %w", table, err))
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return classifySQL(fmt.Errorf("insert %s: %w", table, err))
	}
	return nil
}

func buildSelectSQL(q Query) (string, []any, error) {
	columns := make([]string, 0, len(q.Columns)+len(q.Joins))
	for _, col := range q.Columns {
		columns = append(columns, baseAlias+"."+col)
	}
	for i, j := range q.Joins {
		columns = append(columns, joinColumnSQL(i, j))
	}

	conditions := make([]qb.Condition, 0, len(q.Where))
	for _, f := range q.Where {
		conditions = append(conditions, conditionOf(f))
	}

	orderBy := make([]string, 0, len(q.Order))
	for _, o := range q.Order {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		orderBy = append(orderBy, baseAlias+"."+o.Column+" "+dir)
	}

	return qb.Select(columns...).
		From(q.Table).
		As(baseAlias).
		Where(conditions...).
		OrderBy(orderBy...).
		Limit(q.Limit).
		ToSQL()
}

// joinColumnSQL renders the nested projection as one jsonb column.
func joinColumnSQL(i int, j Join) string {
	inner := fmt.Sprintf("j%d", i)
	cols := make([]string, 0, len(j.Columns))
	for _, col := range j.Columns {
		cols = append(cols, inner+"."+col)
	}
	return fmt.Sprintf(
		"(SELECT to_jsonb(s) FROM (SELECT %s FROM %s AS %s WHERE %s.%s = %s.%s LIMIT 1) AS s) AS %s",
		strings.Join(cols, ", "), j.Table, inner, inner, j.ForeignKey, baseAlias, j.LocalKey, j.Alias,
	)
}

func conditionOf(f Filter) qb.Condition {
	col := baseAlias + "." + f.Column
	switch f.Op {
	case OpIn:
		values, _ := f.Value.([]any)
		return qb.In(col, values)
	case OpIsNull:
		if want, _ := f.Value.(bool); want {
			return qb.IsNull(col)
		}
		return qb.IsNotNull(col)
	case OpNeq:
		return qb.Compare(col, qb.OpNeq, f.Value)
	case OpGt:
		return qb.Compare(col, qb.OpGt, f.Value)
	case OpGte:
		return qb.Compare(col, qb.OpGte, f.Value)
	case OpLt:
		return qb.Compare(col, qb.OpLt, f.Value)
	case OpLte:
		return qb.Compare(col, qb.OpLte, f.Value)
	default:
		return qb.Eq(col, f.Value)
	}
}

func buildInsertSQL(table string, rows []Row) (string, []any, error) {
	colSet := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			colSet[col] = struct{}{}
		}
	}
	columns := make([]string, 0, len(colSet))
	for col := range colSet {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	b := qb.InsertInto(table).Columns(columns...)
	for _, row := range rows {
		values := make([]any, 0, len(columns))
		for _, col := range columns {
			v := row[col]
			if m, ok := v.(map[string]any); ok {
				encoded, err := sonic.Marshal(m)
				if err != nil {
					return "", nil, fmt.Errorf("encode %s.%s: %w", table, col, err)
				}
				v = string(encoded)
			}
			values = append(values, v)
		}
		b.Values(values...)
	}
	return b.ToSQL()
}

// normalizeSQLRow turns driver byte slices into strings and decodes jsonb
// join columns into nested rows.
func normalizeSQLRow(raw map[string]any, joins map[string]struct{}) (Row, error) {
	out := make(Row, len(raw))
	for col, v := range raw {
		b, isBytes := v.([]byte)
		if _, isJoin := joins[col]; isJoin {
			if v == nil {
				out[col] = nil
				continue
			}
			var data []byte
			switch typed := v.(type) {
			case []byte:
				data = typed
			case string:
				data = []byte(typed)
			default:
				return nil, fmt.Errorf("join %s has unexpected type %T", col, v)
			}
			var nested map[string]any
			if err := sonic.Unmarshal(data, &nested); err != nil {
				return nil, fmt.Errorf("decode join %s: %w", col, err)
			}
			out[col] = Row(nested)
			continue
		}
		if isBytes {
			out[col] = string(b)
			continue
		}
		out[col] = v
	}
	return out, nil
}
