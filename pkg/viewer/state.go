package viewer

import (
	"github.com/Sternrassler/artwork-table/pkg/artwork"
	"github.com/Sternrassler/artwork-table/pkg/pagination"
)

// State is a point-in-time copy of a presenter's view.
type State struct {
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
	TotalRecords  int               `json:"total_records"`
	TotalPages    int               `json:"total_pages"`
	Records       []artwork.Artwork `json:"records"`
	SelectedIDs   []int             `json:"selected_ids"`
	SelectedTotal int               `json:"selected_total"`
	SelectedPages map[int]int       `json:"selected_pages"`

	selected map[int]bool
}

type stateInput struct {
	page          int
	pageSize      int
	total         int
	records       []artwork.Artwork
	selectedIDs   []int
	selectedTotal int
	selectedPages map[int]int
}

func newState(in stateInput) State {
	set := make(map[int]bool, len(in.selectedIDs))
	for _, id := range in.selectedIDs {
		set[id] = true
	}

	return State{
		Page:          in.page,
		PageSize:      in.pageSize,
		TotalRecords:  in.total,
		TotalPages:    pagination.TotalPages(in.total, in.pageSize),
		Records:       in.records,
		SelectedIDs:   in.selectedIDs,
		SelectedTotal: in.selectedTotal,
		SelectedPages: in.selectedPages,
		selected:      set,
	}
}

// IsSelected reports whether the record with id is checked on this page.
func (s State) IsSelected(id int) bool {
	return s.selected[id]
}

// AllSelected reports whether every displayed record is checked.
func (s State) AllSelected() bool {
	if len(s.Records) == 0 {
		return false
	}
	for _, r := range s.Records {
		if !s.selected[r.ID] {
			return false
		}
	}
	return true
}

// HasPrev reports whether a previous page exists.
func (s State) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists.
func (s State) HasNext() bool {
	return s.Page < s.TotalPages
}

// PageLinks returns the page ordinals the paginator links to.
func (s State) PageLinks(size int) []int {
	return pagination.Window(s.Page, s.TotalPages, size)
}

// FirstRow and LastRow give the 1-based row range shown on this page.
func (s State) FirstRow() int {
	if len(s.Records) == 0 {
		return 0
	}
	return (s.Page-1)*s.PageSize + 1
}

func (s State) LastRow() int {
	if len(s.Records) == 0 {
		return 0
	}
	return (s.Page-1)*s.PageSize + len(s.Records)
}
