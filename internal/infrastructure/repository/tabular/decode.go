package tabular

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

// Drivers return numbers as int, int64 or float64 and timestamps as time.Time
// or RFC3339 strings, so every accessor accepts each form.

func getInt(row store.Row, col string) int {
	v, _ := intValue(row[col])
	return v
}

func getIntPtr(row store.Row, col string) *int {
	v, ok := intValue(row[col])
	if !ok {
		return nil
	}
	return &v
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func getFloat(row store.Row, col string) float64 {
	v, _ := floatValue(row[col])
	return v
}

func getFloatPtr(row store.Row, col string) *float64 {
	v, ok := floatValue(row[col])
	if !ok {
		return nil
	}
	return &v
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func getDecimalPtr(row store.Row, col string) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch n := row[col].(type) {
	case nil:
		return nil
	case string:
		d, err = decimal.NewFromString(n)
	case float64:
		d = decimal.NewFromFloat(n)
	case int64:
		d = decimal.NewFromInt(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &d
}

func getString(row store.Row, col string) string {
	switch s := row[col].(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func getBool(row store.Row, col string) bool {
	switch b := row[col].(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	default:
		return false
	}
}

func getBoolPtr(row store.Row, col string) *bool {
	switch b := row[col].(type) {
	case bool:
		return &b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func getTime(row store.Row, col string) time.Time {
	t, _ := timeValue(row[col])
	return t
}

func getTimePtr(row store.Row, col string) *time.Time {
	t, ok := timeValue(row[col])
	if !ok {
		return nil
	}
	return &t
}

func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// getMap decodes jsonb columns delivered as a map, a nested row or JSON text.
func getMap(row store.Row, col string) map[string]any {
	switch m := row[col].(type) {
	case map[string]any:
		return m
	case store.Row:
		return map[string]any(m)
	case string:
		return decodeJSONMap([]byte(m))
	case []byte:
		return decodeJSONMap(m)
	default:
		return nil
	}
}

func decodeJSONMap(data []byte) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func getRow(row store.Row, alias string) store.Row {
	switch nested := row[alias].(type) {
	case store.Row:
		return nested
	case map[string]any:
		return store.Row(nested)
	default:
		return nil
	}
}
