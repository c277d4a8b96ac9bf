// Package artwork defines the records returned by the Art Institute of
// Chicago artworks listing endpoint.
package artwork

import "strconv"

// Artwork is a single catalog entry.
type Artwork struct {
	// ID is the unique identifier assigned by the collection.
	ID int `json:"id"`

	Title         string `json:"title"`
	PlaceOfOrigin string `json:"place_of_origin"`
	ArtistDisplay string `json:"artist_display"`

	// DateStart and DateEnd are nil when the collection has no date.
	DateStart *int `json:"date_start"`
	DateEnd   *int `json:"date_end"`
}

// StartYear returns the start year for display, or "" when unknown.
func (a Artwork) StartYear() string {
	return formatYear(a.DateStart)
}

// EndYear returns the end year for display, or "" when unknown.
func (a Artwork) EndYear() string {
	return formatYear(a.DateEnd)
}

func formatYear(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}

// Pagination is the pagination metadata of a listing response.
type Pagination struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// Page is one decoded listing response.
type Page struct {
	Data       []Artwork  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Usable reports whether the page carries a record sequence. A response
// without a data field must not replace what is currently displayed.
func (p *Page) Usable() bool {
	return p != nil && p.Data != nil
}

// IDs returns the record identifiers in order.
func IDs(records []Artwork) []int {
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
