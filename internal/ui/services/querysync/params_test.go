package querysync

import (
	"math/rand"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metagrip/internal/domain"
)

// filters are compared as sets
var stateCmp = cmpopts.SortSlices(func(a, b domain.CategoryID) bool { return a < b })

func TestParseLocationExample(t *testing.T) {
	got := ParseLocation("?q=foo&sort=name&order=asc&filter=app&filter=dataset&page=2", domain.DefaultQueryState())

	want := domain.QueryState{
		Query:   "foo",
		Sort:    domain.SortSpec{Field: domain.SortByName, Direction: domain.SortAsc},
		Filters: []domain.CategoryID{domain.CategoryApp, domain.CategoryDataset},
		Page:    2,
	}
	if diff := cmp.Diff(want, got, stateCmp); diff != "" {
		t.Errorf("ParseLocation mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInvalidFilterBackfillsDefaults(t *testing.T) {
	current := domain.DefaultQueryState()
	current.Filters = []domain.CategoryID{domain.CategoryProgram}

	got := ParseQueryParams(url.Values{"filter": {"app", "bogus"}}, current)
	assert.ElementsMatch(t, domain.DefaultFilters, got.Filters)

	got = ParseQueryParams(url.Values{"filter": {"program", "bogus"}}, current)
	assert.ElementsMatch(t,
		[]domain.CategoryID{domain.CategoryApp, domain.CategoryDataset, domain.CategoryProgram, domain.CategoryStream},
		got.Filters)

	got = ParseQueryParams(url.Values{"filter": {"nope"}}, current)
	assert.ElementsMatch(t, domain.DefaultFilters, got.Filters)
}

func TestParseFallsBackToCurrent(t *testing.T) {
	current := domain.QueryState{
		Query:   "old",
		Filters: []domain.CategoryID{domain.CategoryArtifact},
		Sort:    domain.SortOptions[1],
		Page:    4,
	}

	got := ParseQueryParams(url.Values{
		"sort":  {"name"},
		"order": {"sideways"},
		"page":  {"abc"},
	}, current)

	assert.Equal(t, "", got.Query, "absent q means empty query")
	assert.Equal(t, current.Sort, got.Sort)
	assert.Equal(t, current.Filters, got.Filters)
	assert.Equal(t, 4, got.Page)
}

func TestParsePageClamp(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"0", 1},
		{"-3", 1},
		{"", 1},
		{"7", 7},
		{" 7 ", 7},
		{"2.9", 2},
		{"NaN", 5},
		{"x1", 5},
		{"4611686018427387905", MaxPage},
		{"99999999999999999999", MaxPage},
		{"-1e30", 1},
	}
	current := domain.DefaultQueryState()
	current.Page = 5
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseQueryParams(url.Values{"page": {tt.raw}}, current)
			assert.Equal(t, tt.want, got.Page)
		})
	}
}

func TestParseRepairsInvalidCurrent(t *testing.T) {
	got := ParseQueryParams(url.Values{}, domain.QueryState{})
	assert.Equal(t, domain.DefaultSort, got.Sort)
	assert.Equal(t, domain.DefaultFilters, got.Filters)
	assert.Equal(t, 1, got.Page)
}

func TestParseLocationForms(t *testing.T) {
	current := domain.DefaultQueryState()

	assert.Equal(t, 3, ParseLocation("page=3", current).Page)
	assert.Equal(t, 3, ParseLocation("http://host/ns/default?page=3#frag", current).Page)
	assert.Equal(t, "a b", ParseLocation("?q=a+b", current).Query)
	assert.Equal(t, current, ParseLocation("/ns/default", current))
	assert.Equal(t, 2, ParseLocation("?page=2&q=%zz", current).Page, "malformed pairs are ignored")
}

func TestSerializeOrderAndOmission(t *testing.T) {
	st := domain.QueryState{
		Query:   "foo bar",
		Filters: []domain.CategoryID{domain.CategoryStream, domain.CategoryApp},
		Sort:    domain.SortOptions[0],
		Page:    2,
	}
	assert.Equal(t, "?q=foo+bar&sort=name&order=asc&filter=app&filter=stream&page=2", SerializeQueryString(st))

	st = domain.QueryState{Page: 1}
	assert.Equal(t, "?page=1", SerializeQueryString(st))
}

func randomState(r *rand.Rand) domain.QueryState {
	var filters []domain.CategoryID
	for _, c := range domain.Categories {
		if r.Intn(2) == 0 {
			filters = append(filters, c)
		}
	}
	if len(filters) == 0 {
		filters = []domain.CategoryID{domain.Categories[r.Intn(len(domain.Categories))]}
	}
	words := []string{"", "purchase", "a b", "x&y=z", "ümlaut", "100%", "*", "q?"}
	return domain.QueryState{
		Query:   words[r.Intn(len(words))],
		Filters: filters,
		Sort:    domain.SortOptions[r.Intn(len(domain.SortOptions))],
		Page:    1 + r.Intn(500),
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		st := randomState(r)
		// an unrelated current state must not leak into the result
		got := ParseLocation(SerializeQueryString(st), randomState(r))
		if diff := cmp.Diff(st, got, stateCmp); diff != "" {
			t.Fatalf("round trip of %+v (-want +got):\n%s", st, diff)
		}
	}
}

func TestParseNeverProducesInvalidState(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	keys := []string{"q", "sort", "order", "filter", "page", "junk"}
	vals := []string{"", "app", "name", "asc", "desc", "creation-time", "-1", "0", "3", "1e9", "stream", "%", "NaN"}

	for i := 0; i < 1000; i++ {
		raw := url.Values{}
		for n := r.Intn(6); n > 0; n-- {
			raw.Add(keys[r.Intn(len(keys))], vals[r.Intn(len(vals))])
		}
		var got domain.QueryState
		require.NotPanics(t, func() { got = ParseQueryParams(raw, domain.QueryState{Page: -2}) })

		assert.GreaterOrEqual(t, got.Page, 1)
		assert.NotEmpty(t, got.Filters)
		for _, f := range got.Filters {
			assert.True(t, slices.Contains(domain.Categories, f), "filter %q", f)
		}
		_, ok := domain.LookupSort(string(got.Sort.Field), string(got.Sort.Direction))
		assert.True(t, ok, "sort %+v", got.Sort)
		assert.True(t, strings.HasPrefix(SerializeQueryString(got), "?"))
	}
}
