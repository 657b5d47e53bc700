package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetPageText fetches the sanitised text of one page.
func (s *Store) GetPageText(ctx context.Context, fileID int64, pageNum int) (string, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT text FROM pages WHERE file_id = $1 AND page_num = $2`,
		fileID, pageNum,
	).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to fetch page text: %w", err)
	}
	return text, nil
}

// GetFile fetches one file's metadata by id.
func (s *Store) GetFile(ctx context.Context, fileID int64) (File, error) {
	var f File
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, path, num_pages FROM files WHERE id = $1`,
		fileID,
	).Scan(&f.ID, &f.Name, &f.Path, &f.NumPages)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, fmt.Errorf("failed to fetch file: %w", err)
	}
	return f, nil
}

// GetFilePath fetches the filesystem path of one file. The render handler
// uses this to re-open the PDF on demand.
func (s *Store) GetFilePath(ctx context.Context, fileID int64) (string, error) {
	var path string
	err := s.pool.QueryRow(ctx,
		`SELECT path FROM files WHERE id = $1`,
		fileID,
	).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to fetch file path: %w", err)
	}
	return path, nil
}

// ListFiles returns one page of the file listing ordered by name, plus the
// total row count for the filter. The name filter is a case-insensitive
// substring match. page is 1-based; limit must already be clamped by the
// caller.
func (s *Store) ListFiles(ctx context.Context, page, limit int, name string) ([]File, int64, error) {
	offset := (page - 1) * limit

	var (
		rows pgx.Rows
		err  error
	)
	if name != "" {
		rows, err = s.pool.Query(ctx,
			`SELECT id, name, path, num_pages FROM files
			 WHERE name ILIKE '%' || $3 || '%'
			 ORDER BY name LIMIT $1 OFFSET $2`,
			limit, offset, name)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, name, path, num_pages FROM files
			 ORDER BY name LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := make([]File, 0, limit)
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.NumPages); err != nil {
			return nil, 0, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read file rows: %w", err)
	}

	var total int64
	if name != "" {
		err = s.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM files WHERE name ILIKE '%' || $1 || '%'`,
			name).Scan(&total)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM files`).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	return files, total, nil
}
