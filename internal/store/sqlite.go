package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/bazi/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no analysis matches
var ErrNotFound = errors.New("analysis not found")

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAnalysis stores a chart with its analysis and returns the new record
func (s *Store) SaveAnalysis(spec domain.ChartSpec, a *domain.Analysis) (*domain.Record, error) {
	chartJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	analysisJSON, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}

	id := uuid.New().String()
	now := time.Now()

	_, err = s.db.Exec(
		`INSERT INTO analyses (id, label, chart, analysis, day_master, verdict, useful_god, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, spec.Label, string(chartJSON), string(analysisJSON),
		string(a.Assessment.DayMaster), string(a.Assessment.Verdict), string(a.Assessment.UsefulGod), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}

	return &domain.Record{
		ID:        id,
		Label:     spec.Label,
		Chart:     spec,
		Analysis:  a,
		CreatedAt: now,
	}, nil
}

// GetAnalysis retrieves a record by full ID
func (s *Store) GetAnalysis(id string) (*domain.Record, error) {
	row := s.db.QueryRow(
		"SELECT id, label, chart, analysis, created_at FROM analyses WHERE id = ?",
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return rec, nil
}

// FindByPrefix resolves a short ID to the most recent matching record
func (s *Store) FindByPrefix(prefix string) (*domain.Record, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	row := s.db.QueryRow(
		"SELECT id, label, chart, analysis, created_at FROM analyses WHERE id LIKE ? ORDER BY created_at DESC LIMIT 1",
		prefix+"%",
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	if err != nil {
		return nil, fmt.Errorf("find analysis: %w", err)
	}
	return rec, nil
}

// ListAnalyses returns recent records with pagination
func (s *Store) ListAnalyses(limit, offset int) ([]domain.Record, error) {
	rows, err := s.db.Query(
		"SELECT id, label, chart, analysis, created_at FROM analyses ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchAnalyses matches labels, day masters, verdicts and useful gods
func (s *Store) SearchAnalyses(query string) ([]domain.Record, error) {
	like := "%" + query + "%"
	rows, err := s.db.Query(
		`SELECT id, label, chart, analysis, created_at FROM analyses
		 WHERE label LIKE ? OR day_master LIKE ? OR verdict LIKE ? OR useful_god LIKE ?
		 ORDER BY created_at DESC`,
		like, like, like, like,
	)
	if err != nil {
		return nil, fmt.Errorf("search analyses: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.Record, error) {
	var (
		rec          domain.Record
		chartJSON    string
		analysisJSON string
	)
	if err := row.Scan(&rec.ID, &rec.Label, &chartJSON, &analysisJSON, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chartJSON), &rec.Chart); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	rec.Analysis = &domain.Analysis{}
	if err := json.Unmarshal([]byte(analysisJSON), rec.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return records, nil
}
