//go:build integration

package client

import (
	"context"
	"testing"
	"time"
)

// TestIntegration_LiveListing talks to the public API.
func TestIntegration_LiveListing(t *testing.T) {
	client, err := New(DefaultConfig("artwork-table-integration/0.1.0"))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := client.FetchArtworks(ctx, 1, 0)
	if err != nil {
		t.Fatalf("FetchArtworks() failed: %v", err)
	}

	if len(page.Data) != DefaultPageSize {
		t.Errorf("len(Data) = %d, want %d", len(page.Data), DefaultPageSize)
	}
	if page.Pagination.Total <= DefaultPageSize {
		t.Errorf("Total = %d, expected a large collection", page.Pagination.Total)
	}
	if page.Pagination.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", page.Pagination.CurrentPage)
	}

	seen := make(map[int]bool)
	for _, a := range page.Data {
		if seen[a.ID] {
			t.Errorf("duplicate id %d on page 1", a.ID)
		}
		seen[a.ID] = true
	}

	second, err := client.FetchArtworks(ctx, 2, 0)
	if err != nil {
		t.Fatalf("FetchArtworks(page 2) failed: %v", err)
	}
	for _, a := range second.Data {
		if seen[a.ID] {
			t.Errorf("id %d appears on pages 1 and 2", a.ID)
		}
	}
}
