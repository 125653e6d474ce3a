package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC)
}

func fixture() []Order {
	return []Order{
		{ID: "o1", Customer: "A", TotalCents: 5000, Status: StatusPending, Date: day(3)},
		{ID: "o2", Customer: "B", TotalCents: 1000, Status: StatusShipped, Date: day(1)},
		{ID: "o3", Customer: "C", TotalCents: 5000, Status: StatusPending, Date: day(2)},
		{ID: "o4", Customer: "D", TotalCents: 3000, Status: StatusDelivered, Date: day(4)},
	}
}

func orderIDs(os []Order) []string {
	out := make([]string, 0, len(os))
	for _, o := range os {
		out = append(out, o.ID)
	}
	return out
}

func TestApply_StatusFilter(t *testing.T) {
	res := Apply(fixture(), Query{Status: StatusPending, Sort: SortDate, Dir: Asc, Page: 1, PerPage: 10})

	assert.Equal(t, []string{"o3", "o1"}, orderIDs(res.Items))
	assert.Equal(t, 2, res.Total)
}

func TestApply_SortByDateDesc(t *testing.T) {
	res := Apply(fixture(), Query{Sort: SortDate, Dir: Desc, Page: 1, PerPage: 10})
	assert.Equal(t, []string{"o4", "o1", "o3", "o2"}, orderIDs(res.Items))
}

func TestApply_SortByTotalStable(t *testing.T) {
	asc := Apply(fixture(), Query{Sort: SortTotal, Dir: Asc, Page: 1, PerPage: 10})
	assert.Equal(t, []string{"o2", "o4", "o1", "o3"}, orderIDs(asc.Items))

	// Equal totals keep input order in both directions.
	desc := Apply(fixture(), Query{Sort: SortTotal, Dir: Desc, Page: 1, PerPage: 10})
	assert.Equal(t, []string{"o1", "o3", "o4", "o2"}, orderIDs(desc.Items))
}

func TestApply_Pagination(t *testing.T) {
	res := Apply(fixture(), Query{Sort: SortDate, Dir: Asc, Page: 2, PerPage: 3})

	require.Len(t, res.Items, 1)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.TotalPages)

	empty := Apply(fixture(), Query{Sort: SortDate, Dir: Asc, Page: 5, PerPage: 3})
	assert.Empty(t, empty.Items)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus("returned"))
}
