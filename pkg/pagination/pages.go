package pagination

// PagesNeeded returns how many pages of pageSize records cover n records.
func PagesNeeded(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Take returns how many records of page (1-based) belong to the first n
// records of the listing.
func Take(page, n, pageSize int) int {
	if page < 1 || pageSize <= 0 {
		return 0
	}
	remaining := n - (page-1)*pageSize
	switch {
	case remaining <= 0:
		return 0
	case remaining > pageSize:
		return pageSize
	default:
		return remaining
	}
}

// TotalPages returns the number of pages needed for total records.
func TotalPages(total, pageSize int) int {
	return PagesNeeded(total, pageSize)
}

// Window returns up to size consecutive page links centered on current,
// clamped to 1..totalPages.
func Window(current, totalPages, size int) []int {
	if totalPages <= 0 || size <= 0 {
		return nil
	}
	if size > totalPages {
		size = totalPages
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := current - size/2
	if start < 1 {
		start = 1
	}
	if end := start + size - 1; end > totalPages {
		start = totalPages - size + 1
	}

	pages := make([]int, size)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
