package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/okian/ekiden/internal/domain/distance"
	"github.com/okian/ekiden/internal/domain/view"
)

// schema creates the tables. Members must exist before results and
// profiles because of the foreign keys.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    member_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    gender TEXT NOT NULL DEFAULT '' CHECK (gender IN ('', 'male', 'female')),
    birth_year INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS results (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    time_ms INTEGER NOT NULL CHECK (time_ms >= 0),
    distance REAL NOT NULL CHECK (distance > 0),
    race_name TEXT NOT NULL,
    race_type TEXT NOT NULL CHECK (race_type IN ('road', 'trail', 'track', 'timed')),
    date TEXT NOT NULL,
    comment TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES members(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_results_user ON results(user_id);
CREATE INDEX IF NOT EXISTS idx_results_date ON results(date);
CREATE INDEX IF NOT EXISTS idx_results_distance ON results(distance);
`

// recordView joins results with the owner's name and gender. A profile
// name, when set, wins over the account display name.
const recordView = `
SELECT r.id AS id,
       r.user_id AS user_id,
       COALESCE(NULLIF(p.name, ''), m.display_name) AS name,
       COALESCE(p.gender, '') AS gender,
       r.time_ms AS time_ms,
       r.distance AS distance,
       r.race_name AS race_name,
       r.race_type AS race_type,
       r.date AS date,
       COALESCE(r.comment, '') AS comment,
       r.created_at AS created_at
FROM results r
JOIN members m ON m.id = r.user_id
LEFT JOIN profiles p ON p.member_id = r.user_id`

const viewColumns = "id, user_id, name, gender, time_ms, distance, race_name, race_type, date, comment, created_at"

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	for _, stmt := range viewStatements() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create views: %w", err)
		}
	}
	return nil
}

// viewStatements rebuilds every leaderboard view so that changes to the
// bucket rules apply on the next start. Best views are dropped first
// because they read from the bucket views.
func viewStatements() []string {
	defs := view.Sources()
	stmts := make([]string, 0, 2*len(defs))
	for _, d := range defs {
		if d.Mode == view.ModeBest {
			stmts = append(stmts, "DROP VIEW IF EXISTS "+string(d.Name))
		}
	}
	for _, d := range defs {
		if d.Mode == view.ModeAll {
			stmts = append(stmts, "DROP VIEW IF EXISTS "+string(d.Name))
		}
	}
	allViews := make(map[distance.Bucket]view.Source, distance.Count)
	for _, d := range defs {
		if d.Mode != view.ModeAll {
			continue
		}
		allViews[d.Bucket] = d.Name
		if d.Bucket == distance.All {
			stmts = append(stmts, fmt.Sprintf("CREATE VIEW %s AS %s", d.Name, recordView))
		}
	}
	base := allViews[distance.All]
	for _, d := range defs {
		if d.Mode == view.ModeAll && d.Bucket != distance.All {
			stmts = append(stmts, fmt.Sprintf("CREATE VIEW %s AS SELECT %s FROM %s WHERE %s",
				d.Name, viewColumns, base, bucketPredicate(d.Bucket, "distance")))
		}
	}
	for _, d := range defs {
		if d.Mode == view.ModeBest {
			stmts = append(stmts, fmt.Sprintf(
				"CREATE VIEW %s AS SELECT %s FROM (SELECT %s, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY time_ms, created_at, id) AS rn FROM %s) WHERE rn = 1",
				d.Name, viewColumns, viewColumns, allViews[d.Bucket]))
		}
	}
	return stmts
}

// bucketPredicate renders distance.Bucket.Matches as SQL over col.
func bucketPredicate(b distance.Bucket, col string) string {
	near := func(km float64) string {
		return fmt.Sprintf("abs(%s - %v) < %v", col, km, distance.Tolerance)
	}
	switch b {
	case distance.All:
		return "1 = 1"
	case distance.OtherUnder100:
		parts := []string{fmt.Sprintf("%s < %v", col, distance.HundredKm)}
		for _, km := range []float64{distance.FiveKm, distance.TenKm, distance.HalfKm, distance.FullKm} {
			parts = append(parts, "NOT ("+near(km)+")")
		}
		return strings.Join(parts, " AND ")
	case distance.OtherOver100:
		return fmt.Sprintf("%s > %v", col, distance.HundredKm)
	}
	km, _ := b.Target()
	return near(km)
}
