// Package pdf wraps the PDF rendering library behind the small surface the
// service needs: page counting, per-page text extraction, and on-demand
// page rendering as PNG or as a single-page PDF.
//
// MuPDF contexts are not safe for concurrent use from multiple goroutines,
// so every call into the library is serialised behind one process-wide
// mutex. Rendering throughput is deliberately traded for correctness here;
// rendered pages are cached upstream.
package pdf

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"strconv"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// renderMu serialises all calls into the rendering library.
var renderMu sync.Mutex

// Document is an open PDF file. Not safe for concurrent use; open one
// Document per task.
type Document struct {
	doc  *fitz.Document
	path string
}

// Open opens the PDF at path.
func Open(path string) (*Document, error) {
	renderMu.Lock()
	defer renderMu.Unlock()

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Document{doc: doc, path: path}, nil
}

// Close releases the underlying document.
func (d *Document) Close() error {
	renderMu.Lock()
	defer renderMu.Unlock()
	return d.doc.Close()
}

// Path returns the filesystem path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	renderMu.Lock()
	defer renderMu.Unlock()
	return d.doc.NumPage()
}

// PageText extracts the raw text of the page at the given zero-based index.
func (d *Document) PageText(index int) ([]byte, error) {
	renderMu.Lock()
	defer renderMu.Unlock()

	text, err := d.doc.Text(index)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from page %d of %s: %w", index, d.path, err)
	}
	return []byte(text), nil
}

// RenderPNG rasterises the page at the given zero-based index and encodes
// it as PNG.
func (d *Document) RenderPNG(index int) ([]byte, error) {
	renderMu.Lock()
	defer renderMu.Unlock()

	img, err := d.doc.Image(index)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d of %s: %w", index, d.path, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page %d of %s: %w", index, d.path, err)
	}
	return buf.Bytes(), nil
}

// ExtractPagePDF produces a standalone single-page PDF for the given
// zero-based page index. Vector content is preserved, which keeps text
// selectable in browser viewers.
func ExtractPagePDF(path string, index int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	// pdfcpu page selections are 1-based.
	pages := []string{strconv.Itoa(index + 1)}

	var buf bytes.Buffer
	if err := api.Trim(f, &buf, pages, nil); err != nil {
		return nil, fmt.Errorf("failed to extract page %d of %s: %w", index, path, err)
	}
	return buf.Bytes(), nil
}
