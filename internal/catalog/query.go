package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ShopFront/pkg/kit"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortTitle     SortKey = "title"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortNone, SortPriceAsc, SortPriceDesc, SortTitle:
		return SortKey(s), true
	}
	return SortNone, false
}

const DefaultPerPage = 8

// Query is reconstructed from request parameters on every call; nothing here
// is persisted.
type Query struct {
	Search      string
	Category    string
	InStockOnly bool
	Sort        SortKey
	Page        int
	PerPage     int
}

type Result struct {
	Items      []Product
	Total      int
	TotalPages int
}

// Apply runs the fixed filter -> sort -> paginate pipeline over products.
// It never mutates its input and assumes q.Page >= 1 and q.PerPage > 0;
// a page past the end yields an empty Items slice, not an error.
func Apply(products []Product, q Query) Result {
	filtered := filter(products, q)

	sortProducts(filtered, q.Sort)

	total := len(filtered)
	start, end, totalPages := kit.PageBounds(total, q.Page, q.PerPage)

	items := make([]Product, end-start)
	copy(items, filtered[start:end])

	return Result{Items: items, Total: total, TotalPages: totalPages}
}

func filter(products []Product, q Query) []Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortProducts(ps []Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].PriceCents < ps[j].PriceCents })
	case SortPriceDesc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].PriceCents > ps[j].PriceCents })
	case SortTitle:
		// Collators carry an internal buffer, so build one per call rather
		// than sharing across requests.
		c := collate.New(language.English, collate.Loose)
		sort.SliceStable(ps, func(i, j int) bool { return c.CompareString(ps[i].Title, ps[j].Title) < 0 })
	}
}
