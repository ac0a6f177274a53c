package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelectSQL_ComposesJoinInOneStatement(t *testing.T) {
	t.Parallel()

	query, args, err := buildSelectSQL(Query{
		Table:   "player_gameweek_stats",
		Columns: []string{"player_id", "total_points"},
		Joins:   []Join{{Alias: "player", Table: "players", LocalKey: "player_id", ForeignKey: "id", Columns: []string{"team_id", "element_type"}}},
		Where:   []Filter{Gte("gameweek", 5), In("player_id", []any{1, 2}), {Column: "bonus_status", Op: OpIsNull, Value: false}},
		Order:   []Order{{Column: "gameweek", Desc: true}},
		Limit:   50,
	})
	require.NoError(t, err)

	want := "SELECT t.player_id, t.total_points, " +
		"(SELECT to_jsonb(s) FROM (SELECT j0.team_id, j0.element_type FROM players AS j0 WHERE j0.id = t.player_id LIMIT 1) AS s) AS player " +
		"FROM player_gameweek_stats AS t WHERE t.gameweek >= $1 AND t.player_id IN ($2, $3) AND t.bonus_status IS NOT NULL " +
		"ORDER BY t.gameweek DESC LIMIT 50"
	assert.Equal(t, want, query)
	assert.Equal(t, []any{5, 1, 2}, args)
}

func TestBuildInsertSQL_UnionsColumns(t *testing.T) {
	t.Parallel()

	query, args, err := buildInsertSQL("refresh_snapshot_log", []Row{
		{"source": "mvs", "state": "idle"},
		{"source": "fixtures", "since_backend_sec": 3.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO refresh_snapshot_log (since_backend_sec, source, state) VALUES ($1, $2, $3), ($4, $5, $6)", query)
	assert.Equal(t, []any{nil, "mvs", "idle", 3.5, "fixtures", nil}, args)
}

func TestNormalizeSQLRow_DecodesJoins(t *testing.T) {
	t.Parallel()

	row, err := normalizeSQLRow(map[string]any{
		"player_id": int64(4),
		"player":    []byte(`{"team_id": 3, "element_type": 2}`),
		"fixture":   nil,
		"label":     []byte("abc"),
	}, map[string]struct{}{"player": {}, "fixture": {}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), row["player_id"])
	assert.Equal(t, "abc", row["label"])
	assert.Nil(t, row["fixture"])
	nested, ok := row["player"].(Row)
	require.True(t, ok)
	assert.EqualValues(t, 3, nested["team_id"])
}

func TestClassifySQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"too many connections", &pq.Error{Code: "53300"}, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, true},
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"undefined column", &pq.Error{Code: "42703"}, false},
		{"invalid password", &pq.Error{Code: "28P01"}, false},
		{"unknown", errors.New("read: connection reset by peer"), true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := classifySQL(fmt.Errorf("select players: %w", tc.err))
			assert.Equal(t, tc.transient, IsTransient(got))
			assert.Equal(t, !tc.transient, IsPermanent(got))
		})
	}
}
