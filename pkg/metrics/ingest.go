package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics tracks indexing progress.
type IngestMetrics struct {
	filesIndexed prometheus.Counter
	filesSkipped prometheus.Counter
	filesFailed  prometheus.Counter
	pagesStored  prometheus.Counter
	pagesEmpty   prometheus.Counter
}

// NewIngestMetrics creates the indexer collectors.
// Returns nil when metrics are disabled; a nil receiver is a no-op.
func NewIngestMetrics() *IngestMetrics {
	if !IsEnabled() {
		return nil
	}
	reg := GetRegistry()

	return &IngestMetrics{
		filesIndexed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "lexicon_ingest_files_indexed_total",
			Help: "PDF files whose pages were committed",
		}),
		filesSkipped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "lexicon_ingest_files_skipped_total",
			Help: "PDF files skipped (empty or below the page threshold)",
		}),
		filesFailed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "lexicon_ingest_files_failed_total",
			Help: "PDF files whose transaction rolled back",
		}),
		pagesStored: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "lexicon_ingest_pages_stored_total",
			Help: "Pages inserted into the store",
		}),
		pagesEmpty: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "lexicon_ingest_pages_empty_total",
			Help: "Pages skipped because no meaningful text survived cleaning",
		}),
	}
}

func (m *IngestMetrics) FileIndexed() {
	if m == nil {
		return
	}
	m.filesIndexed.Inc()
}

func (m *IngestMetrics) FileSkipped() {
	if m == nil {
		return
	}
	m.filesSkipped.Inc()
}

func (m *IngestMetrics) FileFailed() {
	if m == nil {
		return
	}
	m.filesFailed.Inc()
}

func (m *IngestMetrics) PageStored() {
	if m == nil {
		return
	}
	m.pagesStored.Inc()
}

func (m *IngestMetrics) PageEmpty() {
	if m == nil {
		return
	}
	m.pagesEmpty.Inc()
}
