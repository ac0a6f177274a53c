package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "deadline_time").
		From("gameweeks").
		Where(Eq("is_current", true), IsNull("release_time")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, deadline_time FROM gameweeks WHERE is_current = $1 AND release_time IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != true {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_CompareAndIn(t *testing.T) {
	query, args, err := Select("t.player_id", "t.gameweek").
		From("player_gameweek_stats").
		As("t").
		Where(
			Compare("t.gameweek", OpGte, 5),
			Compare("t.gameweek", OpLte, 7),
			In("t.player_id", []any{10, 11}),
			Compare("t.minutes", Operator("~"), 0),
		).
		OrderBy("t.gameweek DESC").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT t.player_id, t.gameweek FROM player_gameweek_stats AS t WHERE t.gameweek >= $1 AND t.gameweek <= $2 AND t.player_id IN ($3, $4) AND t.minutes = $5 ORDER BY t.gameweek DESC"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 5 || args[0] != 5 || args[3] != 11 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInNeverMatches(t *testing.T) {
	query, args, err := Select("id").From("teams").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM teams WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("refresh_snapshot_log").
		Columns("source", "state").
		Values("fixtures", "idle").
		Values("mvs", "idle").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO refresh_snapshot_log (source, state) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "fixtures" || args[3] != "idle" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("refresh_snapshot_log").
		Columns("source", "state").
		Values("fixtures").
		ToSQL()
	if err == nil {
		t.Fatalf("expected row width error")
	}
}

func TestSelectBuilder_NotNullAndDefaultLimit(t *testing.T) {
	query, args, err := Select("t.deadline_time").
		From("gameweeks").
		As("t").
		Where(IsNotNull("t.release_time"), Compare("t.id", OpNeq, 9)).
		Limit(0).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT t.deadline_time FROM gameweeks AS t WHERE t.release_time IS NOT NULL AND t.id <> $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 9 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RequiresTable(t *testing.T) {
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected missing table error")
	}
}
