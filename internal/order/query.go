package order

import (
	"sort"

	"ShopFront/pkg/kit"
)

type SortField string

const (
	SortDate  SortField = "date"
	SortTotal SortField = "total"
)

type Dir string

const (
	Asc  Dir = "asc"
	Desc Dir = "desc"
)

const DefaultPerPage = 10

type Query struct {
	Status  Status // empty = all
	Sort    SortField
	Dir     Dir
	Page    int
	PerPage int
}

type Result struct {
	Items      []Order
	Total      int
	TotalPages int
}

// Apply filters by status, sorts, and paginates. Same pipeline rules as the
// catalog: pure, stable sorts, out-of-range pages yield an empty slice.
func Apply(orders []Order, q Query) Result {
	filtered := make([]Order, 0, len(orders))
	for _, o := range orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		filtered = append(filtered, o)
	}

	mul := 1
	if q.Dir == Desc {
		mul = -1
	}

	switch q.Sort {
	case SortTotal:
		sort.SliceStable(filtered, func(i, j int) bool {
			return mul*compareInt64(filtered[i].TotalCents, filtered[j].TotalCents) < 0
		})
	case SortDate:
		sort.SliceStable(filtered, func(i, j int) bool {
			return mul*compareTime(filtered[i], filtered[j]) < 0
		})
	}

	total := len(filtered)
	start, end, totalPages := kit.PageBounds(total, q.Page, q.PerPage)

	items := make([]Order, end-start)
	copy(items, filtered[start:end])

	return Result{Items: items, Total: total, TotalPages: totalPages}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b Order) int {
	switch {
	case a.Date.Before(b.Date):
		return -1
	case a.Date.After(b.Date):
		return 1
	}
	return 0
}
