// Package ingest indexes directory trees of PDF files into the search store.
//
// Indexing runs in two phases. A scan phase walks the tree, opens every PDF
// to read its page count, filters out files that are too short, and upserts
// the surviving file rows in one transaction. A worker phase then extracts,
// sanitises and stores page text with a small pool of workers. Each file is
// processed on its own dedicated connection inside its own transaction, so a
// half-indexed file never becomes visible to search.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/metrics"
	"github.com/abiiranathan/lexicon-sub000/pkg/pdf"
	"github.com/abiiranathan/lexicon-sub000/pkg/sanitize"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

// DefaultWorkers is the page-extraction pool size.
const DefaultWorkers = 4

// Options configures one indexing run.
type Options struct {
	// Root is the directory tree to scan.
	Root string

	// MinPages filters out documents shorter than this. Scanned one-page
	// letters and cover sheets add noise without adding recall.
	MinPages int

	// DryRun scans and reports without touching the database.
	DryRun bool

	// Workers overrides the pool size. Zero means DefaultWorkers.
	Workers int
}

// Indexer runs indexing jobs against one database.
type Indexer struct {
	connString string
	metrics    *metrics.IngestMetrics
	dial       func(ctx context.Context) (taskConn, error)
}

// taskConn is the connection surface one file task needs. *pgx.Conn
// satisfies it.
type taskConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
}

// NewIndexer creates an indexer. The metrics collector may be nil.
func NewIndexer(connString string, m *metrics.IngestMetrics) *Indexer {
	return &Indexer{
		connString: connString,
		metrics:    m,
		dial: func(ctx context.Context) (taskConn, error) {
			return pgx.Connect(ctx, connString)
		},
	}
}

// task is one file handed to the worker pool.
type task struct {
	path     string
	name     string
	fileID   int64
	numPages int
}

// Run executes one indexing pass over opts.Root. Files that fail are logged
// and skipped; Run returns an error only when the run as a whole could not
// proceed or when at least one file failed to index.
func (ix *Indexer) Run(ctx context.Context, opts Options) error {
	runID := uuid.NewString()
	start := time.Now()
	logger.Info("indexing run started",
		slog.String(logger.KeyRunID, runID),
		slog.String(logger.KeyRoot, opts.Root),
		slog.Bool("dryrun", opts.DryRun))

	paths, err := findPDFs(opts.Root)
	if err != nil {
		return err
	}
	logger.Info("scan complete",
		slog.String(logger.KeyRunID, runID),
		slog.Int(logger.KeyFiles, len(paths)))

	tasks, skipped, err := ix.scanFiles(ctx, opts, paths)
	if err != nil {
		return err
	}
	if opts.DryRun {
		logger.Info("dry run finished",
			slog.String(logger.KeyRunID, runID),
			slog.Int(logger.KeyFiles, len(tasks)),
			slog.Int(logger.KeySkipped, skipped))
		return nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) && len(tasks) > 0 {
		workers = len(tasks)
	}

	var failed atomic.Bool
	queue := make(chan task)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for _, t := range tasks {
			select {
			case queue <- t:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return ix.worker(gctx, runID, queue, &failed)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("indexing run aborted: %w", err)
	}

	logger.Info("indexing run finished",
		slog.String(logger.KeyRunID, runID),
		slog.Int(logger.KeyFiles, len(tasks)),
		slog.Int(logger.KeySkipped, skipped),
		slog.Float64(logger.KeyDuration, logger.Duration(start)))

	if failed.Load() {
		return errors.New("indexing finished with failed files")
	}
	return nil
}

// scanFiles opens each PDF, filters by page count and registers the
// survivors in the files table within a single transaction. In dry-run mode
// the database is left alone and file ids stay zero.
func (ix *Indexer) scanFiles(ctx context.Context, opts Options, paths []string) ([]task, int, error) {
	var (
		tx      pgx.Tx
		skipped int
		tasks   = make([]task, 0, len(paths))
	)

	if !opts.DryRun {
		conn, err := pgx.Connect(ctx, ix.connString)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to connect: %w", err)
		}
		defer conn.Close(ctx)

		tx, err = conn.Begin(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)
	}

	for _, path := range paths {
		doc, err := pdf.Open(path)
		if err != nil {
			logger.Warn("skipping unreadable file", logger.Path(path), logger.Err(err))
			ix.metrics.FileSkipped()
			skipped++
			continue
		}
		numPages := doc.NumPages()
		doc.Close()

		if numPages == 0 || numPages < opts.MinPages {
			logger.Debug("skipping short file", logger.Path(path), logger.NumPages(numPages))
			ix.metrics.FileSkipped()
			skipped++
			continue
		}

		t := task{path: path, name: filepath.Base(path), numPages: numPages}
		if opts.DryRun {
			logger.Info("would index", logger.Path(path), logger.NumPages(numPages))
		} else {
			t.fileID, err = postgres.UpsertFile(ctx, tx, t.name, t.path, t.numPages)
			if err != nil {
				return nil, 0, err
			}
		}
		tasks = append(tasks, t)
	}

	if !opts.DryRun {
		if err := tx.Commit(ctx); err != nil {
			return nil, 0, fmt.Errorf("failed to commit file registrations: %w", err)
		}
	}
	return tasks, skipped, nil
}

// worker drains the queue. Each task dials its own connection so no task
// inherits session state from an earlier one.
func (ix *Indexer) worker(ctx context.Context, runID string, queue <-chan task, failed *atomic.Bool) error {
	for t := range queue {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ix.indexTask(ctx, t); err != nil {
			logger.Error("file indexing failed",
				slog.String(logger.KeyRunID, runID),
				logger.Path(t.path),
				logger.Err(err))
			ix.metrics.FileFailed()
			failed.Store(true)
			continue
		}
		logger.Info("file indexed",
			slog.String(logger.KeyRunID, runID),
			logger.Path(t.path),
			logger.NumPages(t.numPages))
		ix.metrics.FileIndexed()
	}
	return nil
}

// indexTask opens the task's dedicated connection and releases it once the
// file is done.
func (ix *Indexer) indexTask(ctx context.Context, t task) error {
	conn, err := ix.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close(ctx)
	return ix.indexFile(ctx, conn, t)
}

// indexFile stores all pages of one file inside a single transaction. Any
// per-page failure rolls the whole file back; partially indexed files would
// silently return incomplete search results.
func (ix *Indexer) indexFile(ctx context.Context, conn taskConn, t task) error {
	doc, err := pdf.Open(t.path)
	if err != nil {
		return err
	}
	defer doc.Close()

	// Guard against the file changing between the scan and this worker.
	if got := doc.NumPages(); got != t.numPages {
		return fmt.Errorf("page count changed from %d to %d", t.numPages, got)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	allOK := true
	for i := 0; i < t.numPages; i++ {
		raw, err := doc.PageText(i)
		if err != nil {
			logger.Warn("page extraction failed",
				logger.Path(t.path), logger.PageNum(i+1), logger.Err(err))
			allOK = false
			continue
		}

		text := sanitizePage(raw)
		if len(text) == 0 {
			ix.metrics.PageEmpty()
			continue
		}

		if err := postgres.InsertPage(ctx, tx, t.fileID, i+1, string(text)); err != nil {
			logger.Warn("page insert failed",
				logger.Path(t.path), logger.PageNum(i+1), logger.Err(err))
			allOK = false
			continue
		}
		ix.metrics.PageStored()
	}

	if !allOK {
		return errors.New("one or more pages failed")
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// sanitizePage prepares raw extracted page text for storage. Pages that are
// blank after cleaning are dropped.
func sanitizePage(raw []byte) []byte {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return sanitize.Sanitize(sanitize.Truncate(raw), true)
}
