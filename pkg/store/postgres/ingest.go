package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by connections, pools and
// transactions. The ingestion pipeline passes its dedicated connections and
// per-file transactions through this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UpsertFile inserts or refreshes a file row and returns its id. On a
// conflicting (name, path) pair the page count is updated in place. Rows
// created by older schema versions can conflict without returning an id;
// the path lookup covers that case.
func UpsertFile(ctx context.Context, q Querier, name, path string, numPages int) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO files (name, path, num_pages) VALUES ($1, $2, $3)
		 ON CONFLICT (name, path) DO UPDATE SET num_pages = EXCLUDED.num_pages
		 RETURNING id`,
		name, path, numPages,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to upsert file: %w", err)
	}

	err = q.QueryRow(ctx, `SELECT id FROM files WHERE path = $1`, path).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve file id for %s: %w", path, err)
	}
	return id, nil
}

// InsertPage stores one page of sanitised text. Re-indexing an existing
// page is a no-op; page text is immutable once stored.
func InsertPage(ctx context.Context, q Querier, fileID int64, pageNum int, text string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO pages (file_id, page_num, text) VALUES ($1, $2, $3)
		 ON CONFLICT (file_id, page_num) DO NOTHING`,
		fileID, pageNum, text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page %d of file %d: %w", pageNum, fileID, err)
	}
	return nil
}
