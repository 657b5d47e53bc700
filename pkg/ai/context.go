package ai

import (
	"fmt"

	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

const (
	// maxContextSize caps the answer context sent with the prompt.
	maxContextSize = 30 * 1024

	// initialContextSize is the starting buffer capacity.
	initialContextSize = 32 * 1024

	// maxContextRows bounds how many ranked rows feed the context.
	maxContextRows = 15
)

// BuildContext packs the top ranked rows into one bounded text blob for the
// LLM prompt. Each excerpt carries a header naming its source file and page
// so the model can cite it. Rows are consumed in rank order; packing stops
// before an excerpt would push the blob past 30 KiB.
func BuildContext(rows []postgres.SearchRow) string {
	if len(rows) == 0 {
		return ""
	}

	buf := make([]byte, 0, initialContextSize)
	n := len(rows)
	if n > maxContextRows {
		n = maxContextRows
	}

	for i := 0; i < n; i++ {
		row := rows[i]
		excerpt := fmt.Sprintf("\n=== EXCERPT %d: [%s, Page %d of %d] ===\n%s\n\n",
			i+1, row.FileName, row.PageNum, row.NumPages, row.ExtendedSnippet)
		if len(buf)+len(excerpt) > maxContextSize {
			break
		}
		buf = append(buf, excerpt...)
	}
	return string(buf)
}
