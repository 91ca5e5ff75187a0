// Package state persists conversion history for the CLI and server layers.
// The conversion engine itself never touches it.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// Entry is one recorded conversion.
type Entry struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Target    string         `json:"target"`
	InputSQL  string         `json:"input_sql"`
	OutputSQL string         `json:"output_sql"`
	Warnings  []core.Warning `json:"warnings,omitempty"`
	Rules     []string       `json:"rules,omitempty"`
	ElapsedMS int64          `json:"elapsed_ms"`
	CreatedAt time.Time      `json:"created_at"`
}

// HistoryStore records and retrieves past conversions.
type HistoryStore interface {
	Save(ctx context.Context, e Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Prune(ctx context.Context, keep int) (int64, error)
	Close() error
}
