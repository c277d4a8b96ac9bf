// Package viewer holds the state of one mounted artwork table: the page on
// display, the rows selected on each page, and bulk range selection.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/artwork"
	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/metrics"
	"github.com/Sternrassler/artwork-table/pkg/pagination"
	"github.com/Sternrassler/artwork-table/pkg/selection"
)

// Prometheus metrics for presenter operations.
var (
	pageLoadsTotal = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Name: "viewer_page_loads_total",
		Help: "Total page loads by result (applied, stale, superseded)",
	}, []string{"result"})

	bulkSelectionsTotal = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Name: "viewer_bulk_selections_total",
		Help: "Total bulk range selections by result (applied, ignored)",
	}, []string{"result"})

	bulkRowsSelected = metrics.Factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "viewer_bulk_rows_selected",
		Help:    "Rows selected per applied bulk range selection",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

// ErrInvalidPage is returned by ChangePage for ordinals outside the listing.
var ErrInvalidPage = errors.New("page out of range")

// Config holds presenter configuration.
type Config struct {
	// PageSize is the fixed number of rows per page.
	PageSize int
}

// DefaultConfig returns the presenter defaults.
func DefaultConfig() Config {
	return Config{
		PageSize: pagination.DefaultConfig().PageSize,
	}
}

// Presenter is one mounted table. All methods are safe for concurrent use.
// The lock is never held while a page is being fetched; a fetch result is
// applied only if the view is still on the page it was fetched for.
type Presenter struct {
	mu sync.Mutex

	fetcher  pagination.PageFetcher
	batch    *pagination.BatchFetcher
	pageSize int

	page     int
	records  []artwork.Artwork
	shown    int // page the records were fetched for, 0 before the first load
	total    int
	selected []artwork.Artwork
	ledger   *selection.Ledger

	logger zerolog.Logger
}

// New creates a presenter on page 1 with an empty ledger. Nothing is
// fetched until Mount.
func New(fetcher pagination.PageFetcher, cfg Config) *Presenter {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}

	return &Presenter{
		fetcher:  fetcher,
		batch:    pagination.NewBatchFetcher(fetcher, pagination.Config{PageSize: cfg.PageSize}),
		pageSize: cfg.PageSize,
		page:     1,
		ledger:   selection.NewLedger(),
		logger:   logging.NewLogger(logging.ComponentViewer),
	}
}

// Mount loads the current page. It reports whether the page was applied.
func (p *Presenter) Mount(ctx context.Context) bool {
	p.mu.Lock()
	page := p.page
	p.mu.Unlock()

	return p.load(ctx, page)
}

// ChangePage moves the view to page. The visible selection is reset to the
// ledger entry for page straight away; the records and total are replaced
// only if the fetch succeeds. Moving to the current page does nothing.
func (p *Presenter) ChangePage(ctx context.Context, page int) error {
	p.mu.Lock()
	if page < 1 {
		p.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	if last := pagination.TotalPages(p.total, p.pageSize); p.total > 0 && page > last {
		p.mu.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrInvalidPage, page, last)
	}
	if page == p.page {
		p.mu.Unlock()
		return nil
	}

	p.page = page
	p.selected, _ = p.ledger.Get(page)
	p.mu.Unlock()

	p.load(ctx, page)
	return nil
}

// load fetches page and, on success, replaces the displayed records and
// total. A failed fetch leaves the previous content on display. A result
// that arrives after the view moved to another page is dropped.
func (p *Presenter) load(ctx context.Context, page int) bool {
	res := p.fetcher.GetArtworks(ctx, page, p.pageSize)
	if !res.Usable() {
		pageLoadsTotal.WithLabelValues("stale").Inc()
		p.logger.Warn().Int("page", page).Msg("Page load failed - keeping previous records")
		return false
	}

	p.mu.Lock()
	if page != p.page {
		current := p.page
		p.mu.Unlock()

		pageLoadsTotal.WithLabelValues("superseded").Inc()
		p.logger.Debug().Int("page", page).Int("current", current).Msg("Superseded page load dropped")
		return false
	}
	p.records = res.Data
	p.total = res.Pagination.Total
	p.shown = page
	p.mu.Unlock()

	pageLoadsTotal.WithLabelValues("applied").Inc()
	p.logger.Debug().
		Int("page", page).
		Int("records", len(res.Data)).
		Int("total", res.Pagination.Total).
		Msg("Page loaded")
	return true
}

// SetSelection replaces the selection of the current page with the
// displayed records whose ids are listed, in display order, and returns it.
// Ids that are not on display are ignored. While the records on display
// belong to another page (their fetch failed) nothing is written and nil
// is returned.
func (p *Presenter) SetSelection(ids []int) []artwork.Artwork {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	chosen, _ := p.setSelectionLocked(want)
	return chosen
}

// SelectOnPage is SetSelection for a form rendered on page. It does nothing
// and reports false when the view has since moved to another page, or when
// page's records are not on display.
func (p *Presenter) SelectOnPage(page int, ids []int) ([]artwork.Artwork, bool) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if page != p.page {
		p.logger.Debug().Int("page", page).Int("current", p.page).Msg("Stale page selection ignored")
		return nil, false
	}
	return p.setSelectionLocked(want)
}

// SelectPage checks every displayed record of page. Like SelectOnPage it
// reports false when the view is on another page.
func (p *Presenter) SelectPage(page int) ([]artwork.Artwork, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if page != p.page {
		return nil, false
	}
	want := make(map[int]bool, len(p.records))
	for _, rec := range p.records {
		want[rec.ID] = true
	}
	return p.setSelectionLocked(want)
}

// setSelectionLocked writes the current page's ledger entry. It refuses when
// the displayed records were fetched for another page, so an entry only ever
// holds records of its own page.
func (p *Presenter) setSelectionLocked(want map[int]bool) ([]artwork.Artwork, bool) {
	if p.shown != p.page {
		p.logger.Warn().
			Int("page", p.page).
			Int("shown", p.shown).
			Msg("Selection refused - records on display belong to another page")
		return nil, false
	}

	chosen := make([]artwork.Artwork, 0, len(want))
	for _, rec := range p.records {
		if want[rec.ID] {
			chosen = append(chosen, rec)
		}
	}

	p.selected = chosen
	p.ledger.Set(p.page, chosen)

	p.logger.Debug().
		Int("page", p.page).
		Int("selected", len(chosen)).
		Int("selected_total", p.ledger.Total()).
		Msg("Page selection updated")

	return append([]artwork.Artwork(nil), chosen...), true
}

// BulkSelect selects the first N records of the listing, where N is parsed
// from input by ParseRowCount. Input that does not yield a positive count
// is ignored without fetching anything. Otherwise the needed pages are
// fetched one by one and the ledger is replaced with the result; pages that
// fail to load are simply missing from it.
//
// Overlapping calls are not serialized: each replaces the ledger when its
// own fetches finish, so the last one to finish wins.
func (p *Presenter) BulkSelect(ctx context.Context, input string) bool {
	n, ok := ParseRowCount(input)
	if !ok {
		bulkSelectionsTotal.WithLabelValues("ignored").Inc()
		p.logger.Debug().Str("input", input).Msg("Bulk selection input ignored")
		return false
	}

	entries := p.batch.FetchFirst(ctx, n)

	p.mu.Lock()
	p.ledger.Replace(entries)
	if recs, ok := entries[p.page]; ok {
		p.selected = append([]artwork.Artwork(nil), recs...)
	}
	selectedTotal := p.ledger.Total()
	p.mu.Unlock()

	bulkSelectionsTotal.WithLabelValues("applied").Inc()
	bulkRowsSelected.Observe(float64(selectedTotal))

	p.logger.Info().
		Int("rows", n).
		Int("pages", len(entries)).
		Int("selected_total", selectedTotal).
		Msg("Bulk selection applied")

	return true
}

// State returns a snapshot of the current view.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	counts := make(map[int]int, p.ledger.Len())
	for page, recs := range p.ledger.Snapshot() {
		counts[page] = len(recs)
	}

	return newState(stateInput{
		page:          p.page,
		pageSize:      p.pageSize,
		total:         p.total,
		records:       append([]artwork.Artwork(nil), p.records...),
		selectedIDs:   artwork.IDs(p.selected),
		selectedTotal: p.ledger.Total(),
		selectedPages: counts,
	})
}

// Selected returns every selected record across pages, ascending by page.
func (p *Presenter) Selected() []artwork.Artwork {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.All()
}
