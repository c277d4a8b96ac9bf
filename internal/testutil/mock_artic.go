// Package testutil provides testing utilities for the artwork table.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/Sternrassler/artwork-table/pkg/artwork"
)

// MockFailure defines how a page request should fail.
type MockFailure struct {
	StatusCode int
	Body       string
}

// MockArtic is a configurable fake of the artworks listing endpoint. It
// serves a collection of Total records with ids 1..Total in order.
type MockArtic struct {
	server *httptest.Server
	mu     sync.RWMutex

	total    int
	failures map[int]MockFailure
	delay    time.Duration

	// Tracking
	RequestCount  int
	PagesFetched  []int
	LastLimit     int
	LastUserAgent string
}

// NewMockArtic creates a mock listing server holding total records.
func NewMockArtic(total int) *MockArtic {
	mock := &MockArtic{
		total:    total,
		failures: make(map[int]MockFailure),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))

	return mock
}

// URL returns the listing endpoint URL.
func (m *MockArtic) URL() string {
	return m.server.URL + "/api/v1/artworks"
}

// Close shuts down the mock server.
func (m *MockArtic) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockArtic) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PagesFetched = nil
	m.LastLimit = 0
	m.LastUserAgent = ""
}

// SetTotal changes the size of the served collection.
func (m *MockArtic) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

// FailPage makes every request for page fail as described.
func (m *MockArtic) FailPage(page int, failure MockFailure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[page] = failure
}

// HealPage removes a failure configured with FailPage.
func (m *MockArtic) HealPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, page)
}

// SetDelay delays every response.
func (m *MockArtic) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockArtic) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPagesFetched returns the requested page ordinals in arrival order.
func (m *MockArtic) GetPagesFetched() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.PagesFetched...)
}

func (m *MockArtic) handle(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	m.mu.Lock()
	m.RequestCount++
	m.PagesFetched = append(m.PagesFetched, page)
	m.LastLimit = limit
	m.LastUserAgent = r.Header.Get("User-Agent")
	failure, failing := m.failures[page]
	total := m.total
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")

	if failing {
		if failure.StatusCode == 0 {
			failure.StatusCode = http.StatusOK
		}
		w.WriteHeader(failure.StatusCode)
		w.Write([]byte(failure.Body))
		return
	}

	if page < 1 || limit < 1 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":400,"error":"Invalid parameters"}`))
		return
	}

	body, err := json.Marshal(BuildPage(page, limit, total))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write(body)
}

// BuildPage returns the listing response the mock serves for page.
func BuildPage(page, limit, total int) artwork.Page {
	totalPages := (total + limit - 1) / limit
	data := []artwork.Artwork{}

	start := (page - 1) * limit
	for i := start; i < start+limit && i < total; i++ {
		data = append(data, NewArtwork(i+1))
	}

	return artwork.Page{
		Data: data,
		Pagination: artwork.Pagination{
			Total:       total,
			Limit:       limit,
			Offset:      start,
			TotalPages:  totalPages,
			CurrentPage: page,
		},
	}
}

// NewArtwork returns the deterministic record with the given id.
func NewArtwork(id int) artwork.Artwork {
	start := 1800 + id
	end := start + 2
	return artwork.Artwork{
		ID:            id,
		Title:         fmt.Sprintf("Artwork %d", id),
		PlaceOfOrigin: "Chicago",
		ArtistDisplay: fmt.Sprintf("Artist %d", id),
		DateStart:     &start,
		DateEnd:       &end,
	}
}
