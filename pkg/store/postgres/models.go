package postgres

// File is one indexed PDF document.
type File struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	NumPages int    `json:"num_pages"`
}

// Page is the text of one page of a file. PageNum is 1-based.
type Page struct {
	FileID  int64  `json:"file_id"`
	PageNum int    `json:"page_num"`
	Text    string `json:"text"`
}

// SearchRow is one ranked search result.
//
// Snippet is the store's highlighted headline, meant for display.
// ExtendedSnippet is the first 2000 bytes of the page text and feeds the
// LLM answer context; it is never shown to users.
type SearchRow struct {
	FileID          int64
	FileName        string
	NumPages        int
	PageNum         int
	Snippet         string
	ExtendedSnippet string
	Rank            float32
}
