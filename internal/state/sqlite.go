package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// ErrNotFound is returned when a conversion id does not exist.
var ErrNotFound = errors.New("state: conversion not found")

// SQLiteStore implements HistoryStore on a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the history database at path and brings the
// schema up to date. Use ":memory:" for an in-memory store.
func Open(path string, log *slog.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("state: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("state: ping %s: %w", path, err)
	}
	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenDB wraps an existing connection without migrating. Used by tests that
// need to inject a failing connection.
func OpenDB(db *sql.DB, log *slog.Logger) *SQLiteStore {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{db: db, log: log}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save records one conversion. A missing ID gets a fresh UUID.
func (s *SQLiteStore) Save(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	warnings, err := json.Marshal(e.Warnings)
	if err != nil {
		return fmt.Errorf("state: encode warnings: %w", err)
	}
	rules, err := json.Marshal(e.Rules)
	if err != nil {
		return fmt.Errorf("state: encode rules: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, source, target, input_sql, output_sql, warnings, rules, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.Target, e.InputSQL, e.OutputSQL, string(warnings), string(rules), e.ElapsedMS, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("state: save conversion %s: %w", e.ID, err)
	}
	s.log.Debug("conversion recorded", "id", e.ID, "source", e.Source, "target", e.Target)
	return nil
}

// Get retrieves one conversion by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, target, input_sql, output_sql, warnings, rules, elapsed_ms, created_at
		 FROM conversions WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("state: get conversion %s: %w", id, err)
	}
	return e, nil
}

// List returns the most recent conversions, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, target, input_sql, output_sql, warnings, rules, elapsed_ms, created_at
		 FROM conversions ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("state: list conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("state: list conversions: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("state: list conversions: %w", err)
	}
	return entries, nil
}

// Prune deletes everything but the newest keep entries and reports how many
// rows were removed.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM conversions WHERE id NOT IN (
		   SELECT id FROM conversions ORDER BY created_at DESC, id LIMIT ?
		 )`, keep)
	if err != nil {
		return 0, fmt.Errorf("state: prune conversions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("state: prune conversions: %w", err)
	}
	if n > 0 {
		s.log.Debug("history pruned", "removed", n, "kept", keep)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var warnings, rules string
	if err := row.Scan(&e.ID, &e.Source, &e.Target, &e.InputSQL, &e.OutputSQL,
		&warnings, &rules, &e.ElapsedMS, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	if err := json.Unmarshal([]byte(rules), &e.Rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return &e, nil
}

// EntryFromResult builds a history entry from a conversion result.
func EntryFromResult(source, target, input, output string, warnings []core.Warning, rules []string, elapsed time.Duration, id string) Entry {
	return Entry{
		ID:        id,
		Source:    source,
		Target:    target,
		InputSQL:  input,
		OutputSQL: output,
		Warnings:  warnings,
		Rules:     rules,
		ElapsedMS: elapsed.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
}
