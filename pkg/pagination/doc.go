// Package pagination provides page arithmetic and sequential range fetching
// for the paginated artworks listing.
//
// The listing is addressed by 1-based page ordinals with a fixed page size.
// Selecting the first N records needs PagesNeeded(N, size) pages, and page i
// contributes Take(i, N, size) records.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(articClient, pagination.Config{PageSize: 12})
//	selected := fetcher.FetchFirst(ctx, 25)
//	// selected[1] and selected[2] hold 12 records, selected[3] holds 1
//
// The batch fetcher:
//   - Requests pages strictly in ascending order, one at a time
//   - Keeps only the prefix of the last page needed
//   - Omits pages whose fetch failed, without retrying
//
// Window computes the page links shown by the table paginator.
package pagination
