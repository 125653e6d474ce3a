package kit

// Pagination is the list-response metadata shared by catalog and order
// listings.
type Pagination struct {
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
}

// PageBounds returns the half-open [start, end) slice bounds for a 1-based
// page over total items, plus the page count. Pages past the end yield an
// empty range rather than an error. perPage must be > 0.
func PageBounds(total, page, perPage int) (start, end, totalPages int) {
	totalPages = (total + perPage - 1) / perPage

	start = (page - 1) * perPage
	if start > total {
		start = total
	}

	end = start + perPage
	if end > total {
		end = total
	}

	return start, end, totalPages
}

// ClampPage normalizes a raw page number: anything below 1 becomes 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
