// Package selection keeps track of rows selected across pages.
package selection

import (
	"sort"

	"github.com/Sternrassler/artwork-table/pkg/artwork"
)

// Ledger maps a page ordinal to the records selected on that page. An entry
// only ever holds records from that page's last-fetched content; callers
// resolve selections against the displayed rows before calling Set.
//
// Ledger is not safe for concurrent use.
type Ledger struct {
	pages map[int][]artwork.Artwork
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		pages: make(map[int][]artwork.Artwork),
	}
}

// Set replaces the entry for page. An empty selection is kept as an
// explicit empty entry.
func (l *Ledger) Set(page int, records []artwork.Artwork) {
	l.pages[page] = clone(records)
}

// Get returns a copy of the entry for page and whether it exists.
func (l *Ledger) Get(page int) ([]artwork.Artwork, bool) {
	records, ok := l.pages[page]
	if !ok {
		return nil, false
	}
	return clone(records), true
}

// Replace discards every entry and installs entries in their place.
func (l *Ledger) Replace(entries map[int][]artwork.Artwork) {
	pages := make(map[int][]artwork.Artwork, len(entries))
	for page, records := range entries {
		pages[page] = clone(records)
	}
	l.pages = pages
}

// Pages returns the page ordinals that have an entry, ascending.
func (l *Ledger) Pages() []int {
	pages := make([]int, 0, len(l.pages))
	for page := range l.pages {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.pages)
}

// Total returns the number of selected records across all pages.
func (l *Ledger) Total() int {
	total := 0
	for _, records := range l.pages {
		total += len(records)
	}
	return total
}

// All flattens the ledger in ascending page order.
func (l *Ledger) All() []artwork.Artwork {
	all := make([]artwork.Artwork, 0, l.Total())
	for _, page := range l.Pages() {
		all = append(all, l.pages[page]...)
	}
	return all
}

// Snapshot returns a deep copy of all entries.
func (l *Ledger) Snapshot() map[int][]artwork.Artwork {
	out := make(map[int][]artwork.Artwork, len(l.pages))
	for page, records := range l.pages {
		out[page] = clone(records)
	}
	return out
}

func clone(records []artwork.Artwork) []artwork.Artwork {
	out := make([]artwork.Artwork, len(records))
	copy(out, records)
	return out
}
