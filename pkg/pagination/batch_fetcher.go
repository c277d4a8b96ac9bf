// Package pagination provides page arithmetic and sequential range fetching
// for the paginated artworks listing.
package pagination

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/artwork"
	"github.com/Sternrassler/artwork-table/pkg/logging"
)

// Config holds batch fetcher configuration
type Config struct {
	// PageSize is the number of records on every page.
	PageSize int
}

// DefaultConfig returns the page size used by the public listing.
func DefaultConfig() Config {
	return Config{
		PageSize: 12,
	}
}

// PageFetcher fetches a single page. A nil result means the fetch failed
// and has already been reported.
type PageFetcher interface {
	GetArtworks(ctx context.Context, page, limit int) *artwork.Page
}

// BatchFetcher fetches the leading pages of the listing, one after another.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger(logging.ComponentPagination),
	}
}

// PageSize returns the page size the fetcher plans with.
func (bf *BatchFetcher) PageSize() int {
	return bf.config.PageSize
}

// FetchFirst fetches pages 1..PagesNeeded(n) in ascending order, awaiting
// each page before requesting the next, and returns the first n records
// keyed by page. Every page but the last contributes all its records; the
// last contributes the prefix that brings the count to exactly n.
//
// A page whose fetch fails is left out of the result. Nothing is retried
// and pages already fetched are kept.
func (bf *BatchFetcher) FetchFirst(ctx context.Context, n int) map[int][]artwork.Artwork {
	start := time.Now()
	results := make(map[int][]artwork.Artwork)

	if n <= 0 {
		return results
	}

	totalPages := PagesNeeded(n, bf.config.PageSize)

	bf.logger.Info().
		Int("rows", n).
		Int("total_pages", totalPages).
		Msg("Starting sequential page fetch")

	failed := 0
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		res := bf.fetcher.GetArtworks(ctx, pageNum, bf.config.PageSize)
		if !res.Usable() {
			failed++
			bf.logger.Warn().
				Int("page", pageNum).
				Msg("Page fetch failed - page omitted from selection")
			continue
		}

		take := Take(pageNum, n, bf.config.PageSize)
		if take > len(res.Data) {
			take = len(res.Data)
		}
		results[pageNum] = append([]artwork.Artwork(nil), res.Data[:take]...)
	}

	bf.logger.Info().
		Int("rows", n).
		Int("pages", len(results)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results
}
