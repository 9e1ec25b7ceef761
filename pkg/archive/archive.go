// Package archive keeps a history of generated compositions in SQLite.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/james-see/codecomposer/pkg/composer"
)

// ErrNotFound is returned when no composition has the requested ID.
var ErrNotFound = errors.New("composition not found")

// Record is the summary row kept for each saved composition.
type Record struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Source      string           `json:"source,omitempty"`
	Language    string           `json:"language,omitempty"`
	Style       string           `json:"style"`
	Key         string           `json:"key"`
	Scale       string           `json:"scale"`
	Progression string           `json:"progression"`
	Seed        int64            `json:"seed"`
	Tempo       int              `json:"tempo"`
	Tokens      int              `json:"tokens"`
	Bars        int              `json:"bars"`
	Options     composer.Options `json:"options"`
}

// SaveParams holds what is stored for one composition.
type SaveParams struct {
	Source      string
	Language    string
	Options     composer.Options
	Composition *composer.Composition
}

// ListParams filters the history listing.
type ListParams struct {
	Style string
	Limit int
}

// Store is a SQLite-backed composition history.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// timeLayout sorts lexically in creation order
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Open opens or creates the archive database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS compositions (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		source      TEXT,
		language    TEXT,
		style       TEXT NOT NULL,
		key         TEXT NOT NULL,
		scale       TEXT NOT NULL,
		progression TEXT NOT NULL,
		seed        INTEGER NOT NULL,
		tempo       INTEGER NOT NULL,
		tokens      INTEGER NOT NULL,
		bars        INTEGER NOT NULL,
		options     TEXT NOT NULL,
		body        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_compositions_created ON compositions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_compositions_style ON compositions(style);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores a composition and returns its summary record.
func (s *Store) Save(ctx context.Context, p SaveParams) (*Record, error) {
	if p.Composition == nil {
		return nil, errors.New("nil composition")
	}

	options, err := json.Marshal(p.Options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	body, err := json.Marshal(p.Composition)
	if err != nil {
		return nil, fmt.Errorf("encode composition: %w", err)
	}

	now := time.Now().UTC()
	m := p.Composition.Metadata
	rec := &Record{
		ID:          s.newID(now),
		CreatedAt:   now.Truncate(time.Millisecond),
		Source:      p.Source,
		Language:    p.Language,
		Style:       m.Style,
		Key:         m.Key,
		Scale:       m.Scale,
		Progression: m.Progression,
		Seed:        m.Seed,
		Tempo:       m.Tempo,
		Tokens:      m.Tokens,
		Bars:        len(p.Composition.Bars),
		Options:     p.Options,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO compositions (id, created_at, source, language, style, key, scale, progression,
		                           seed, tempo, tokens, bars, options, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(timeLayout), nullable(rec.Source), nullable(rec.Language),
		rec.Style, rec.Key, rec.Scale, rec.Progression,
		rec.Seed, rec.Tempo, rec.Tokens, rec.Bars, string(options), string(body))
	if err != nil {
		return nil, fmt.Errorf("insert composition: %w", err)
	}
	return rec, nil
}

const recordColumns = `id, created_at, source, language, style, key, scale, progression,
	seed, tempo, tokens, bars, options`

// Get loads a composition and its record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, *composer.Composition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+`, body FROM compositions WHERE id = ?`, id)

	var body string
	rec, err := scanRecord(row, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}

	var comp composer.Composition
	if err := json.Unmarshal([]byte(body), &comp); err != nil {
		return nil, nil, fmt.Errorf("decode composition %s: %w", id, err)
	}
	return rec, &comp, nil
}

// List returns saved records, newest first.
func (s *Store) List(ctx context.Context, p ListParams) ([]Record, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + recordColumns + ` FROM compositions`
	var args []interface{}
	if p.Style != "" {
		query += ` WHERE style = ?`
		args = append(args, p.Style)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Delete removes a composition.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM compositions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner, extra ...interface{}) (*Record, error) {
	var (
		rec              Record
		createdAt        string
		source, language sql.NullString
		options          string
	)
	dest := []interface{}{
		&rec.ID, &createdAt, &source, &language, &rec.Style, &rec.Key, &rec.Scale, &rec.Progression,
		&rec.Seed, &rec.Tempo, &rec.Tokens, &rec.Bars, &options,
	}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	rec.Source = source.String
	rec.Language = language.String
	if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
		return nil, fmt.Errorf("decode options for %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
