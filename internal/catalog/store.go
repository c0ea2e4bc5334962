package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"shelfscan/internal/config"
)

// ErrCatalogLocked indicates another shelfscan process holds the catalog open.
var ErrCatalogLocked = errors.New("catalog is locked by another shelfscan instance")

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the catalog database. It takes an exclusive
// lock file beside the database; a second instance fails fast with
// ErrCatalogLocked rather than racing the first writer.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.CatalogDir, "catalog.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !locked {
		return nil, ErrCatalogLocked
	}

	dbPath := filepath.Join(cfg.Paths.CatalogDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection and releases the instance lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// UpsertByCode inserts the candidate or, when a record with the same
// non-empty scan code already exists, merges the candidate into it. The
// existing record keeps its ID and AddedAt; LastModifiedAt is bumped. The
// returned ID identifies the persisted record either way.
func (s *Store) UpsertByCode(ctx context.Context, candidate *Record) (string, error) {
	if candidate == nil {
		return "", errors.New("candidate is nil")
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if candidate.ScanCode != "" {
		row := tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE scan_code = ?`, candidate.ScanCode)
		existing, err := scanRecord(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("lookup by code: %w", err)
		}
		if existing != nil {
			merged := merge(existing, candidate)
			merged.LastModifiedAt = now
			if err := updateRecord(ctx, tx, merged); err != nil {
				return "", err
			}
			if err := tx.Commit(); err != nil {
				return "", fmt.Errorf("commit upsert: %w", err)
			}
			return existing.ID, nil
		}
	}

	record := candidate.Clone()
	record.ID = uuid.NewString()
	record.AddedAt = now
	record.LastModifiedAt = now
	if err := insertRecord(ctx, tx, record); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit insert: %w", err)
	}
	return record.ID, nil
}

// GetByID fetches a record by identifier, returning nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// GetByCode returns the record carrying the scan code, or nil. An empty code
// never matches anything.
func (s *Store) GetByCode(ctx context.Context, code string) (*Record, error) {
	if code == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE scan_code = ?`, code)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record by code: %w", err)
	}
	return record, nil
}

// Delete removes a record by identifier. Deleting an unknown ID is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Stats returns the record count and per-genre tallies.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	records, err := s.listAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(records), Genres: make(map[string]int)}
	for _, record := range records {
		for _, genre := range record.Genres {
			stats.Genres[genre]++
		}
	}
	return stats, nil
}

func (s *Store) listAll(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY added_at`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

const recordColumns = "id, scan_code, title, release_date, overview, poster_url, backdrop_url, runtime_minutes, genres_json, cast_json, director, rating, added_at, last_modified_at"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, db execer, record *Record) error {
	genresJSON, castJSON, err := encodeLists(record)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(
		ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ScanCode,
		record.Title,
		nullableString(record.ReleaseDate),
		nullableString(record.Overview),
		nullableString(record.PosterURL),
		nullableString(record.BackdropURL),
		record.RuntimeMinutes,
		genresJSON,
		castJSON,
		nullableString(record.Director),
		nullableString(record.Rating),
		record.AddedAt.Format(time.RFC3339Nano),
		record.LastModifiedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func updateRecord(ctx context.Context, db execer, record *Record) error {
	genresJSON, castJSON, err := encodeLists(record)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(
		ctx,
		`UPDATE records
         SET scan_code = ?, title = ?, release_date = ?, overview = ?,
             poster_url = ?, backdrop_url = ?, runtime_minutes = ?,
             genres_json = ?, cast_json = ?, director = ?, rating = ?,
             last_modified_at = ?
         WHERE id = ?`,
		record.ScanCode,
		record.Title,
		nullableString(record.ReleaseDate),
		nullableString(record.Overview),
		nullableString(record.PosterURL),
		nullableString(record.BackdropURL),
		record.RuntimeMinutes,
		genresJSON,
		castJSON,
		nullableString(record.Director),
		nullableString(record.Rating),
		record.LastModifiedAt.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

func encodeLists(record *Record) (string, string, error) {
	genres := record.Genres
	if genres == nil {
		genres = []string{}
	}
	cast := record.Cast
	if cast == nil {
		cast = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return "", "", fmt.Errorf("marshal genres: %w", err)
	}
	castJSON, err := json.Marshal(cast)
	if err != nil {
		return "", "", fmt.Errorf("marshal cast: %w", err)
	}
	return string(genresJSON), string(castJSON), nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id          string
		scanCode    string
		title       string
		releaseDate sql.NullString
		overview    sql.NullString
		posterURL   sql.NullString
		backdropURL sql.NullString
		runtime     sql.NullInt64
		genresJSON  string
		castJSON    string
		director    sql.NullString
		rating      sql.NullString
		addedRaw    string
		modifiedRaw string
	)

	if err := scanner.Scan(
		&id,
		&scanCode,
		&title,
		&releaseDate,
		&overview,
		&posterURL,
		&backdropURL,
		&runtime,
		&genresJSON,
		&castJSON,
		&director,
		&rating,
		&addedRaw,
		&modifiedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:             id,
		ScanCode:       scanCode,
		Title:          title,
		ReleaseDate:    releaseDate.String,
		Overview:       overview.String,
		PosterURL:      posterURL.String,
		BackdropURL:    backdropURL.String,
		RuntimeMinutes: int(runtime.Int64),
		Director:       director.String,
		Rating:         rating.String,
	}
	if err := json.Unmarshal([]byte(genresJSON), &record.Genres); err != nil {
		return nil, fmt.Errorf("unmarshal genres: %w", err)
	}
	if err := json.Unmarshal([]byte(castJSON), &record.Cast); err != nil {
		return nil, fmt.Errorf("unmarshal cast: %w", err)
	}
	if added, err := time.Parse(time.RFC3339Nano, addedRaw); err == nil {
		record.AddedAt = added
	}
	if modified, err := time.Parse(time.RFC3339Nano, modifiedRaw); err == nil {
		record.LastModifiedAt = modified
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
