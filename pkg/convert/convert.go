// Package convert orchestrates the conversion pipeline: preprocessing,
// structural parsing with recovery, table-driven translation, feature
// converters, and post-conversion validation. Configuration problems are
// the only hard errors; everything downstream degrades to warnings on a
// best-effort result.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/feature"
	"github.com/leapstack-labs/sqlbridge/pkg/parse"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
	"github.com/leapstack-labs/sqlbridge/pkg/preprocess"
	"github.com/leapstack-labs/sqlbridge/pkg/recovery"
	"github.com/leapstack-labs/sqlbridge/pkg/translate"
	"github.com/leapstack-labs/sqlbridge/pkg/validate"
)

// DefaultChunkThreshold is the input size above which a script is split
// into statements and converted concurrently.
const DefaultChunkThreshold = 100 * 1024

// Request is one conversion job. Config may be nil, which selects the
// default profile; the engine snapshots it at request start.
type Request struct {
	SQL    string           `json:"sql"`
	Source dialect.Dialect  `json:"source"`
	Target dialect.Dialect  `json:"target"`
	Config *core.RuleConfig `json:"config,omitempty"`
}

// Result is the outcome of a conversion. It is immutable once returned.
type Result struct {
	ID           uuid.UUID        `json:"id"`
	SQL          string           `json:"sql"`
	Warnings     []core.Warning   `json:"warnings"`
	AppliedRules []string         `json:"applied_rules"`
	Complexity   *core.Complexity `json:"complexity,omitempty"`
	Validation   []core.Warning   `json:"validation,omitempty"`
	Elapsed      time.Duration    `json:"elapsed"`
}

// Config carries the engine's dependencies and tuning.
type Config struct {
	// Logger receives pipeline diagnostics. Nil discards them.
	Logger *slog.Logger
	// Workers bounds the chunk pool. Zero selects min(4, GOMAXPROCS).
	Workers int
	// ChunkThreshold overrides the split size. Zero selects the default.
	ChunkThreshold int
}

// Engine runs conversions. It is safe for concurrent use.
type Engine struct {
	log       *slog.Logger
	workers   int
	threshold int
}

// New builds an engine from cfg.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = min(4, runtime.GOMAXPROCS(0))
	}
	threshold := cfg.ChunkThreshold
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}
	return &Engine{log: log, workers: workers, threshold: threshold}
}

// Convert runs the full pipeline on one request. The returned error is
// non-nil only for configuration problems: unknown dialects or a
// same-dialect pair.
func (e *Engine) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if err := dialect.ValidatePair(req.Source, req.Target); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	cfg := core.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	res := &Result{ID: uuid.New()}
	var acc core.Accumulator
	var err error
	if len(req.SQL) > e.threshold {
		res.SQL, res.Complexity, err = e.convertChunked(ctx, req, cfg, &acc)
		if err != nil {
			return nil, err
		}
	} else {
		res.SQL, res.Complexity = e.convertText(ctx, req.SQL, req.Source, req.Target, cfg, &acc)
	}

	res.Validation = validate.Check(req.SQL, res.SQL, validate.FromConfig(cfg))
	res.AppliedRules = acc.Rules
	res.Warnings = filterWarnings(acc.Warnings, cfg)
	res.Elapsed = time.Since(start)

	e.log.InfoContext(ctx, "conversion finished",
		"id", res.ID,
		"source", req.Source,
		"target", req.Target,
		"input_bytes", len(req.SQL),
		"rules", len(res.AppliedRules),
		"warnings", len(res.Warnings),
		"elapsed", res.Elapsed)
	return res, nil
}

// convertText is the single-chunk pipeline.
func (e *Engine) convertText(ctx context.Context, sql string, src, tgt dialect.Dialect, cfg core.RuleConfig, acc *core.Accumulator) (string, *core.Complexity) {
	if cfg.DDL {
		sql = preprocess.Run(sql, tgt, acc)
	}

	_, cx, err := parse.Parse(sql)
	if err != nil {
		e.log.DebugContext(ctx, "structural parse failed", "error", err)
		outcome := recovery.Sequential(sql, nil, acc)
		if len(outcome.Attempts) > 0 {
			// One reparse after recovery; after that the pipeline runs on
			// text rules alone.
			if _, cx2, err2 := parse.Parse(outcome.SQL); err2 == nil {
				sql, cx = outcome.SQL, cx2
				acc.Rule("recovery: reparse succeeded (confidence %.2f)", outcome.Confidence)
			} else if outcome.SQL != sql {
				sql = outcome.SQL
			}
		}
		if cx == nil {
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"statement could not be parsed structurally; conversion proceeded on text rules only")
		}
	}

	if cfg.Functions {
		sql = translate.Functions(sql, src, tgt, acc)
	}
	if cfg.DataTypes {
		sql = translate.DataTypes(sql, src, tgt, acc)
	}
	if cfg.Syntax {
		sql = translate.Operators(sql, src, tgt, acc)
	}
	sql = feature.Run(sql, src, tgt, cfg, acc)
	return sql, cx
}

// convertChunked splits a large script on statement boundaries and converts
// the chunks on a bounded pool. Chunk results and their accumulators are
// reassembled in input order, so the output reads as if converted serially.
func (e *Engine) convertChunked(ctx context.Context, req Request, cfg core.RuleConfig, acc *core.Accumulator) (string, *core.Complexity, error) {
	chunks := pattern.SplitStatements(req.SQL)
	e.log.DebugContext(ctx, "input split for conversion", "chunks", len(chunks), "workers", e.workers)

	type chunkResult struct {
		sql string
		cx  *core.Complexity
		acc core.Accumulator
	}
	results := make([]chunkResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var chunkAcc core.Accumulator
			out, cx := e.convertText(gctx, chunk, req.Source, req.Target, cfg, &chunkAcc)
			results[i] = chunkResult{sql: out, cx: cx, acc: chunkAcc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", nil, fmt.Errorf("convert: %w", err)
	}

	var b []byte
	total := &core.Complexity{}
	sawComplexity := false
	for _, r := range results {
		b = append(b, r.sql...)
		acc.Merge(r.acc)
		if r.cx != nil {
			sawComplexity = true
			total.Joins += r.cx.Joins
			total.Subqueries += r.cx.Subqueries
			total.Functions += r.cx.Functions
			total.Aggregates += r.cx.Aggregates
			total.Windows += r.cx.Windows
			total.CTEs += r.cx.CTEs
		}
	}
	if !sawComplexity {
		total = nil
	}
	return string(b), total, nil
}

// filterWarnings applies the Warnings toggle: when advisory output is
// disabled, only error-severity findings survive.
func filterWarnings(warns []core.Warning, cfg core.RuleConfig) []core.Warning {
	if cfg.Warnings {
		return warns
	}
	var kept []core.Warning
	for _, w := range warns {
		if w.Severity == core.SeverityError {
			kept = append(kept, w)
		}
	}
	return kept
}
