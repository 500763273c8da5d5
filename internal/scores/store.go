// Package scores persists finished arena runs in a local SQLite database
// and ranks them.
package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Garsondee/Arena-Sense/internal/game"
)

// ErrNotFound is returned when a run ID is not in the store.
var ErrNotFound = errors.New("run not found")

// Point values for a run's score.
const (
	pointsPerKill     = 100
	pointsPerCritical = 50
	pointsPerWave     = 500
	pointsPerBossKill = 1000
)

// Run is one finished (or abandoned) run.
type Run struct {
	ID           uuid.UUID
	Seed         int64
	Outcome      string
	Wave         int
	WavesCleared int
	Kills        int
	Criticals    int
	Score        int
	Created      time.Time
}

// FromScoreBoard builds a run record from a sim's score collaborator and
// its outcome. bossKind marks which kills earn the boss bonus.
func FromScoreBoard(id uuid.UUID, seed int64, reason game.RunOutcomeReason, b *game.ScoreBoard, bossKind game.AgentKind) Run {
	r := Run{
		ID:           id,
		Seed:         seed,
		Outcome:      reason.Outcome.String(),
		Wave:         reason.Wave,
		WavesCleared: len(b.Waves),
		Kills:        len(b.Kills),
		Created:      time.Now().UTC(),
	}
	bosses := 0
	for _, k := range b.Kills {
		if k.Critical {
			r.Criticals++
		}
		if k.Kind == bossKind {
			bosses++
		}
	}
	r.Score = Points(r.Kills, r.Criticals, r.WavesCleared, bosses)
	return r
}

// Points scores a run.
func Points(kills, criticals, wavesCleared, bossKills int) int {
	return kills*pointsPerKill + criticals*pointsPerCritical + wavesCleared*pointsPerWave + bossKills*pointsPerBossKill
}

// Store is a SQLite-backed run table.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	seed          INTEGER NOT NULL,
	outcome       TEXT NOT NULL,
	wave          INTEGER NOT NULL,
	waves_cleared INTEGER NOT NULL,
	kills         INTEGER NOT NULL,
	criticals     INTEGER NOT NULL,
	score         INTEGER NOT NULL,
	created       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_score ON runs (score DESC);
`

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open scores db: %w", err)
	}
	// One connection: SQLite serialises writers anyway, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts or replaces a run.
func (s *Store) Record(ctx context.Context, r Run) error {
	const q = `
	INSERT INTO runs (id, seed, outcome, wave, waves_cleared, kills, criticals, score, created)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		outcome = excluded.outcome,
		wave = excluded.wave,
		waves_cleared = excluded.waves_cleared,
		kills = excluded.kills,
		criticals = excluded.criticals,
		score = excluded.score;
	`
	_, err := s.db.ExecContext(ctx, q, r.ID.String(), r.Seed, r.Outcome, r.Wave, r.WavesCleared,
		r.Kills, r.Criticals, r.Score, r.Created.UnixNano())
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Get loads one run.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// Top returns the n best runs by score, newest first among ties.
func (s *Store) Top(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY score DESC, created DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("top runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("top runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns how many runs are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

const runColumns = `id, seed, outcome, wave, waves_cleared, kills, criticals, score, created`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		id      string
		created int64
	)
	if err := sc.Scan(&id, &r.Seed, &r.Outcome, &r.Wave, &r.WavesCleared, &r.Kills, &r.Criticals, &r.Score, &created); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("bad run id %q: %w", id, err)
	}
	r.ID = parsed
	r.Created = time.Unix(0, created).UTC()
	return r, nil
}
