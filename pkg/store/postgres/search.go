package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// searchQueryTemplate is the ranked full-text query. Two tsqueries are
// derived from the user input: a broad websearch query that drives matching
// and ranking, and a phrase query that boosts pages containing the input as
// an exact phrase well above any cover-density rank. DISTINCT ON keeps one
// row per (file_id, page_num).
//
// The %s slot receives the per-file filter clause, or nothing.
const searchQueryTemplate = `
WITH input_queries AS (
    SELECT websearch_to_tsquery('english', $1) AS broad_query,
           phraseto_tsquery('english', $1) AS phrase_query
),
RankedPages AS (
    SELECT p.file_id, p.page_num,
           ts_rank_cd(p.text_vector, inputs.broad_query)
             + CASE WHEN p.text_vector @@ inputs.phrase_query THEN 10.0 ELSE 0.0 END
           AS rank
    FROM pages p CROSS JOIN input_queries inputs
    WHERE p.text_vector @@ inputs.broad_query
    %s
    ORDER BY rank DESC LIMIT 100
),
UniquePages AS (
    SELECT DISTINCT ON (file_id, page_num) file_id, page_num, rank
    FROM RankedPages ORDER BY file_id, page_num, rank DESC
)
SELECT u.file_id, f.name, f.num_pages, u.page_num,
       ts_headline('english', p.text, inputs.broad_query,
                   'StartSel=<b>, StopSel=</b>, MaxWords=200, MinWords=20') AS snippet,
       LEFT(p.text, 2000) AS extended_snippet,
       u.rank
FROM UniquePages u CROSS JOIN input_queries inputs
JOIN files f ON u.file_id = f.id
JOIN pages p ON u.file_id = p.file_id AND u.page_num = p.page_num
ORDER BY u.rank DESC, f.name, u.page_num LIMIT 100`

var (
	searchAllSQL     = fmt.Sprintf(searchQueryTemplate, "")
	searchPerFileSQL = fmt.Sprintf(searchQueryTemplate, "AND p.file_id = $2")
)

// Search runs the ranked full-text query. A fileID greater than zero
// restricts matching to that file. At most 100 rows are returned, ordered
// by descending rank, then file name, then page number.
func (s *Store) Search(ctx context.Context, query string, fileID int64) ([]SearchRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if fileID > 0 {
		rows, err = s.pool.Query(ctx, searchPerFileSQL, query, fileID)
	} else {
		rows, err = s.pool.Query(ctx, searchAllSQL, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer rows.Close()

	results := make([]SearchRow, 0, 16)
	for rows.Next() {
		var r SearchRow
		if err := rows.Scan(&r.FileID, &r.FileName, &r.NumPages, &r.PageNum,
			&r.Snippet, &r.ExtendedSnippet, &r.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search rows: %w", err)
	}
	return results, nil
}
