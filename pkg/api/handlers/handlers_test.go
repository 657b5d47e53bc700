package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

// fakeStore serves canned data and counts calls so tests can tell cache
// hits from database reads.
type fakeStore struct {
	pages map[string]string
	files map[int64]postgres.File
	rows  []postgres.SearchRow

	pageCalls   int
	fileCalls   int
	listCalls   int
	searchCalls int

	listTotal int64
	pingErr   error
	failErr   error
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeStore) GetPageText(_ context.Context, fileID int64, pageNum int) (string, error) {
	f.pageCalls++
	if f.failErr != nil {
		return "", f.failErr
	}
	text, ok := f.pages[fmt.Sprintf("%d:%d", fileID, pageNum)]
	if !ok {
		return "", postgres.ErrNotFound
	}
	return text, nil
}

func (f *fakeStore) GetFile(_ context.Context, fileID int64) (postgres.File, error) {
	f.fileCalls++
	if f.failErr != nil {
		return postgres.File{}, f.failErr
	}
	file, ok := f.files[fileID]
	if !ok {
		return postgres.File{}, postgres.ErrNotFound
	}
	return file, nil
}

func (f *fakeStore) GetFilePath(_ context.Context, fileID int64) (string, error) {
	if f.failErr != nil {
		return "", f.failErr
	}
	file, ok := f.files[fileID]
	if !ok {
		return "", postgres.ErrNotFound
	}
	return file.Path, nil
}

func (f *fakeStore) ListFiles(_ context.Context, page, limit int, name string) ([]postgres.File, int64, error) {
	f.listCalls++
	if f.failErr != nil {
		return nil, 0, f.failErr
	}
	files := make([]postgres.File, 0, len(f.files))
	for _, file := range f.files {
		files = append(files, file)
	}
	return files, f.listTotal, nil
}

func (f *fakeStore) Search(_ context.Context, query string, fileID int64) ([]postgres.SearchRow, error) {
	f.searchCalls++
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.rows, nil
}

type fakeSummarizer struct {
	calls   int
	summary string
}

func (f *fakeSummarizer) Summarize(_ context.Context, _, _ string) string {
	f.calls++
	return f.summary
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/api/search", h.Search)
	r.Get("/api/list-files", h.ListFiles)
	r.Get("/api/list-files/{file_id}", h.GetFile)
	r.Get("/api/file/{file_id}/page/{page_num}", h.GetPage)
	r.Get("/api/file/{file_id}/render-page/{page_num}", h.RenderPage)
	return r
}

func get(t *testing.T, router http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newFixture() (*fakeStore, *Handler) {
	store := &fakeStore{
		pages: map[string]string{"1:1": "hello world"},
		files: map[int64]postgres.File{
			1: {ID: 1, Name: "a.pdf", Path: "/docs/a.pdf", NumPages: 3},
		},
		listTotal: 1,
	}
	h := New(store, cache.New(64, time.Minute), nil)
	return store, h
}

func TestHealth(t *testing.T) {
	store, h := newFixture()
	router := newTestRouter(h)

	rec := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	store.pingErr = fmt.Errorf("connection refused")
	rec = get(t, router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestGetPage(t *testing.T) {
	store, h := newFixture()
	router := newTestRouter(h)

	t.Run("BadParams", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/file/abc/page/1").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/file/1/page/0").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/file/-1/page/1").Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := get(t, router, "/api/file/1/page/99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"page not found"}`, rec.Body.String())
	})

	t.Run("FetchThenCache", func(t *testing.T) {
		first := get(t, router, "/api/file/1/page/1")
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, contentTypeJSON, first.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"file_id":1,"page_num":1,"text":"hello world"}`, first.Body.String())
		calls := store.pageCalls

		// The store changing must not be visible while the entry lives.
		store.pages["1:1"] = "changed"
		second := get(t, router, "/api/file/1/page/1")
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, calls, store.pageCalls)
	})
}

func TestGetFile(t *testing.T) {
	store, h := newFixture()
	router := newTestRouter(h)

	t.Run("NotFound", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, router, "/api/list-files/42").Code)
	})

	t.Run("FetchThenCache", func(t *testing.T) {
		first := get(t, router, "/api/list-files/1")
		require.Equal(t, http.StatusOK, first.Code)
		assert.JSONEq(t, `{"id":1,"name":"a.pdf","path":"/docs/a.pdf","num_pages":3}`, first.Body.String())

		calls := store.fileCalls
		second := get(t, router, "/api/list-files/1")
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, calls, store.fileCalls)
	})
}

func TestListFiles(t *testing.T) {
	store, h := newFixture()
	store.listTotal = 120
	router := newTestRouter(h)

	t.Run("PaginationMeta", func(t *testing.T) {
		rec := get(t, router, "/api/list-files?page=2&limit=25")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Page       int   `json:"page"`
			Limit      int   `json:"limit"`
			TotalCount int64 `json:"total_count"`
			HasNext    bool  `json:"has_next"`
			HasPrev    bool  `json:"has_prev"`
			TotalPages int64 `json:"total_pages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Page)
		assert.Equal(t, 25, resp.Limit)
		assert.Equal(t, int64(120), resp.TotalCount)
		assert.Equal(t, int64(5), resp.TotalPages)
		assert.True(t, resp.HasNext)
		assert.True(t, resp.HasPrev)
	})

	t.Run("ClampsAndDefaults", func(t *testing.T) {
		rec := get(t, router, "/api/list-files?page=0&limit=9999")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 100, resp.Limit)
	})

	t.Run("EmptyCorpusHasOnePage", func(t *testing.T) {
		empty := &fakeStore{files: map[int64]postgres.File{}}
		router := newTestRouter(New(empty, cache.New(8, time.Minute), nil))

		rec := get(t, router, "/api/list-files")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Results    []postgres.File `json:"results"`
			TotalPages int64           `json:"total_pages"`
			HasNext    bool            `json:"has_next"`
			HasPrev    bool            `json:"has_prev"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Results)
		assert.Equal(t, int64(1), resp.TotalPages)
		assert.False(t, resp.HasNext)
		assert.False(t, resp.HasPrev)
	})

	t.Run("CachedPerPage", func(t *testing.T) {
		calls := store.listCalls
		get(t, router, "/api/list-files?page=3")
		get(t, router, "/api/list-files?page=3")
		assert.Equal(t, calls+1, store.listCalls)

		get(t, router, "/api/list-files?page=4")
		assert.Equal(t, calls+2, store.listCalls)
	})
}

func TestSearch(t *testing.T) {
	newSearchFixture := func(summary string) (*fakeStore, *fakeSummarizer, http.Handler) {
		store := &fakeStore{
			rows: []postgres.SearchRow{
				{FileID: 1, FileName: "a.pdf", NumPages: 3, PageNum: 1,
					Snippet: "<b>hello</b> world", ExtendedSnippet: "hello world", Rank: 10.5},
			},
		}
		ai := &fakeSummarizer{summary: summary}
		h := New(store, cache.New(64, time.Minute), ai)
		return store, ai, newTestRouter(h)
	}

	t.Run("MissingQuery", func(t *testing.T) {
		_, _, router := newSearchFixture("")
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/search").Code)
	})

	t.Run("ResultsShape", func(t *testing.T) {
		_, _, router := newSearchFixture("")
		rec := get(t, router, "/api/search?q=hello")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"results":[{"file_id":1,"file_name":"a.pdf","page_num":1,"num_pages":3,"snippet":"<b>hello</b> world"}],
			"count":1,
			"query":"hello",
			"ai_summary":null
		}`, rec.Body.String())
	})

	t.Run("SummaryIncluded", func(t *testing.T) {
		_, ai, router := newSearchFixture("<p>answer</p>")
		rec := get(t, router, "/api/search?q=hello")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, ai.calls)

		var resp struct {
			AISummary *string `json:"ai_summary"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.AISummary)
		assert.Equal(t, "<p>answer</p>", *resp.AISummary)
	})

	t.Run("NoSummaryForPerFileSearch", func(t *testing.T) {
		_, ai, router := newSearchFixture("<p>answer</p>")
		get(t, router, "/api/search?q=hello&file_id=1")
		assert.Equal(t, 0, ai.calls)
	})

	t.Run("NoSummaryWhenDisabled", func(t *testing.T) {
		_, ai, router := newSearchFixture("<p>answer</p>")
		get(t, router, "/api/search?q=hello&ai_enabled=false")
		assert.Equal(t, 0, ai.calls)
	})

	t.Run("CachedBySearchKey", func(t *testing.T) {
		store, _, router := newSearchFixture("")
		get(t, router, "/api/search?q=hello")
		get(t, router, "/api/search?q=hello")
		assert.Equal(t, 1, store.searchCalls)

		get(t, router, "/api/search?q=hello&file_id=1")
		assert.Equal(t, 2, store.searchCalls)
	})

	t.Run("InvalidFileID", func(t *testing.T) {
		_, _, router := newSearchFixture("")
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/search?q=x&file_id=abc").Code)
	})
}

func TestStoreFailureReturnsMessage(t *testing.T) {
	store, h := newFixture()
	store.failErr = fmt.Errorf(`ERROR: relation "pages" does not exist (SQLSTATE 42P01)`)
	router := newTestRouter(h)

	urls := map[string]string{
		"Search":     "/api/search?q=hello",
		"ListFiles":  "/api/list-files",
		"GetFile":    "/api/list-files/1",
		"GetPage":    "/api/file/1/page/1",
		"RenderPage": "/api/file/1/render-page/1",
	}
	for name, url := range urls {
		t.Run(name, func(t *testing.T) {
			rec := get(t, router, url)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t,
				`{"error":"ERROR: relation \"pages\" does not exist (SQLSTATE 42P01)"}`,
				rec.Body.String())
		})
	}
}

func TestRenderPage(t *testing.T) {
	newRenderFixture := func() (*Handler, *int, http.Handler) {
		store := &fakeStore{
			files: map[int64]postgres.File{
				1: {ID: 1, Name: "a.pdf", Path: "/docs/a.pdf", NumPages: 3},
			},
		}
		h := New(store, cache.New(16, time.Minute), nil)
		renders := 0
		h.renderPNG = func(path string, index int) ([]byte, error) {
			renders++
			return []byte(fmt.Sprintf("png:%s:%d", path, index)), nil
		}
		h.renderPDF = func(path string, index int) ([]byte, error) {
			renders++
			return []byte(fmt.Sprintf("pdf:%s:%d", path, index)), nil
		}
		return h, &renders, newTestRouter(h)
	}

	t.Run("DefaultsToPNG", func(t *testing.T) {
		_, _, router := newRenderFixture()
		rec := get(t, router, "/api/file/1/render-page/2")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "png:/docs/a.pdf:1", rec.Body.String(), "page index must be zero-based")
	})

	t.Run("PDFType", func(t *testing.T) {
		_, _, router := newRenderFixture()
		rec := get(t, router, "/api/file/1/render-page/1?type=pdf")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, "pdf:/docs/a.pdf:0", rec.Body.String())
	})

	t.Run("BadType", func(t *testing.T) {
		_, _, router := newRenderFixture()
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/file/1/render-page/1?type=gif").Code)
	})

	t.Run("UnknownFile", func(t *testing.T) {
		_, _, router := newRenderFixture()
		assert.Equal(t, http.StatusNotFound, get(t, router, "/api/file/9/render-page/1").Code)
	})

	t.Run("RenderFailureIsInternal", func(t *testing.T) {
		h, _, router := newRenderFixture()
		h.renderPNG = func(string, int) ([]byte, error) {
			return nil, fmt.Errorf("cannot open page")
		}
		rec := get(t, router, "/api/file/1/render-page/1")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"failed to render page"}`, rec.Body.String())
	})

	t.Run("CachedPerFormat", func(t *testing.T) {
		_, renders, router := newRenderFixture()
		get(t, router, "/api/file/1/render-page/1")
		get(t, router, "/api/file/1/render-page/1")
		assert.Equal(t, 1, *renders)

		get(t, router, "/api/file/1/render-page/1?type=pdf")
		assert.Equal(t, 2, *renders)
	})
}
