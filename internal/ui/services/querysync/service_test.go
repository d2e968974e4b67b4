package querysync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metagrip/internal/client"
	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

type fakeSearcher struct {
	calls []client.SearchRequest
	total int
	err   error
}

func (f *fakeSearcher) Search(_ context.Context, req client.SearchRequest) (*client.SearchResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := &client.SearchResponse{Total: f.total}
	for i := 0; i < req.Limit && req.Offset+i < f.total; i++ {
		resp.Results = append(resp.Results, metadata.RawEntity{
			EntityID: metadata.EntityID{Entity: "DATASET", Dataset: fmt.Sprintf("ds-%d", req.Offset+i)},
		})
	}
	return resp, nil
}

func counterKeys() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("key-%d", n)
	}
}

// newMounted returns a service with a 2x2 grid that has applied its first search
func newMounted(t *testing.T, total int, location string) (*Service, *fakeSearcher) {
	t.Helper()
	fs := &fakeSearcher{total: total}
	svc := NewService(fs, nil, Options{
		Namespace: "default",
		Metrics:   Metrics{CardWidth: 10, CardHeight: 5},
		KeyFunc:   counterKeys(),
	})
	_, changed := svc.Resize(20, 10)
	require.False(t, changed, "resize before mount must not search")
	require.Equal(t, 4, svc.PageSize())

	req := svc.Mount(location)
	require.True(t, svc.Apply(svc.RunSearch(context.Background(), req)))
	return svc, fs
}

func TestMountIssuesSearchFromLocation(t *testing.T) {
	svc, fs := newMounted(t, 10, "?q=purch&sort=name&order=desc&filter=dataset&page=2")

	require.Len(t, fs.calls, 1)
	assert.Equal(t, client.SearchRequest{
		Namespace: "default",
		Query:     "purch*",
		Target:    []domain.CategoryID{domain.CategoryDataset},
		Limit:     4,
		Offset:    4,
		Sort:      "entity-name desc",
	}, fs.calls[0])

	assert.Equal(t, PhaseLoaded, svc.Phase())
	assert.Equal(t, 3, svc.NumPages())
	require.Len(t, svc.Entities(), 4)
	assert.Equal(t, "ds-4", svc.Entities()[0].ID)
	assert.Equal(t, "key-1", svc.Entities()[0].Key)
	assert.Equal(t, []string{"?q=purch&sort=name&order=desc&filter=dataset&page=2"}, svc.History())
}

func TestFilterToggleExample(t *testing.T) {
	svc, fs := newMounted(t, 10, "?page=2")
	fs.calls = nil

	req, ok := svc.OnFilterToggle(domain.CategoryStream)
	require.True(t, ok)
	svc.Apply(svc.RunSearch(context.Background(), req))

	assert.Equal(t, []domain.CategoryID{domain.CategoryApp, domain.CategoryDataset}, svc.State().Filters)
	require.Len(t, fs.calls, 1)
	assert.Equal(t, (2-1)*4, fs.calls[0].Offset)
	assert.Equal(t, 2, svc.State().Page, "page is sticky across filter changes")
	assert.Equal(t, "?sort=creation-time&order=desc&filter=app&filter=dataset&page=2", svc.Location())

	req, ok = svc.OnFilterToggle(domain.CategoryProgram)
	require.True(t, ok)
	assert.Equal(t, []domain.CategoryID{domain.CategoryApp, domain.CategoryDataset, domain.CategoryProgram}, req.Search.Target)
}

func TestFilterToggleKeepsLastFilter(t *testing.T) {
	svc, _ := newMounted(t, 1, "?filter=app")

	_, ok := svc.OnFilterToggle(domain.CategoryApp)
	assert.False(t, ok)
	assert.Equal(t, []domain.CategoryID{domain.CategoryApp}, svc.State().Filters)

	_, ok = svc.OnFilterToggle("bogus")
	assert.False(t, ok)
}

func TestPageChangeBounds(t *testing.T) {
	svc, fs := newMounted(t, 10, "")
	require.Equal(t, 3, svc.NumPages())
	before := svc.State()
	fs.calls = nil

	for _, page := range []int{0, -1, 4} {
		_, ok := svc.OnPageChange(page)
		assert.False(t, ok, "page %d", page)
	}
	assert.Equal(t, before, svc.State())
	assert.Empty(t, fs.calls)
	assert.Len(t, svc.History(), 1)

	req, ok := svc.OnPageChange(3)
	require.True(t, ok)
	assert.Equal(t, DirectionNext, svc.Direction())
	assert.Equal(t, 8, req.Search.Offset)

	_, ok = svc.OnPageChange(1)
	require.True(t, ok)
	assert.Equal(t, DirectionPrev, svc.Direction())

	_, ok = svc.OnPageChange(1)
	require.True(t, ok)
	assert.Equal(t, DirectionNext, svc.Direction(), "same page counts as next")
}

func TestSortAndSearchTextReplaceOnlyTheirField(t *testing.T) {
	svc, _ := newMounted(t, 10, "?q=a&filter=stream&page=2")

	req, ok := svc.OnSortChange(domain.SortOptions[2])
	require.True(t, ok)
	assert.Equal(t, "creation-time asc", req.Search.Sort)
	assert.Equal(t, "a*", req.Search.Query)
	assert.Equal(t, 2, svc.State().Page)

	_, ok = svc.OnSortChange(domain.SortSpec{Field: "size", Direction: domain.SortAsc})
	assert.False(t, ok)

	req = svc.OnSearchTextChange("orders")
	assert.Equal(t, "orders*", req.Search.Query)
	assert.Equal(t, domain.SortOptions[2], svc.State().Sort)
	assert.Equal(t, []domain.CategoryID{domain.CategoryStream}, svc.State().Filters)
	assert.Equal(t, 2, svc.State().Page)
}

func TestStaleOutcomeIsDropped(t *testing.T) {
	svc, _ := newMounted(t, 10, "")

	older := svc.OnSearchTextChange("a")
	newer := svc.OnSearchTextChange("ab")

	newerOut := svc.RunSearch(context.Background(), newer)
	olderOut := svc.RunSearch(context.Background(), older)

	assert.True(t, svc.Apply(newerOut))
	assert.False(t, svc.Apply(olderOut))
	assert.Equal(t, PhaseLoaded, svc.Phase())
}

func TestSearchFailureShowsEmpty(t *testing.T) {
	svc, fs := newMounted(t, 10, "")
	fs.err = errors.New("connection refused")

	req := svc.OnSearchTextChange("x")
	assert.Equal(t, PhaseLoading, svc.Phase())
	assert.True(t, svc.Apply(svc.RunSearch(context.Background(), req)))

	assert.Equal(t, PhaseErrored, svc.Phase())
	assert.True(t, svc.Errored())
	assert.Empty(t, svc.Entities())
	assert.Equal(t, 3, svc.NumPages(), "page count survives a failed search")
}

func TestResizeReissuesSearch(t *testing.T) {
	svc, _ := newMounted(t, 10, "?page=2")

	_, changed := svc.Resize(20, 10)
	assert.False(t, changed)

	req, changed := svc.Resize(30, 10)
	require.True(t, changed)
	assert.Equal(t, 6, req.Search.Limit)
	assert.Equal(t, 6, req.Search.Offset)
	assert.Len(t, svc.History(), 1, "resizing does not change the location")
}

func TestResizeKeepsPageInRange(t *testing.T) {
	svc, _ := newMounted(t, 10, "?page=3")
	require.Equal(t, 3, svc.NumPages())

	// 3 columns by 2 rows: 10 results fit on 2 pages
	req, changed := svc.Resize(30, 10)
	require.True(t, changed)
	assert.Equal(t, 2, svc.State().Page)
	assert.Equal(t, 6, req.Search.Offset)
	assert.Contains(t, svc.Location(), "page=2")

	require.True(t, svc.Apply(svc.RunSearch(context.Background(), req)))
	assert.Equal(t, 2, svc.NumPages())
	assert.NotEmpty(t, svc.Entities())
}

func TestHugePageNumbersStayBounded(t *testing.T) {
	for _, raw := range []string{"4611686018427387905", "4611686018427387904", "99999999999999999999", "1e300"} {
		t.Run(raw, func(t *testing.T) {
			svc, fs := newMounted(t, 10, "?page="+raw)
			assert.Equal(t, MaxPage, svc.State().Page)
			require.Len(t, fs.calls, 1)
			assert.Equal(t, (MaxPage-1)*4, fs.calls[0].Offset)
			assert.Positive(t, fs.calls[0].Offset)
		})
	}
}

func TestBackRestoresPreviousLocation(t *testing.T) {
	svc, _ := newMounted(t, 10, "?q=first")
	svc.OnSearchTextChange("second")
	svc.Apply(svc.RunSearch(context.Background(), svc.OnSearchTextChange("third")))
	assert.Len(t, svc.History(), 3)

	req, ok := svc.Back()
	require.True(t, ok)
	assert.Equal(t, "second*", req.Search.Query)
	req, ok = svc.Back()
	require.True(t, ok)
	assert.Equal(t, "first*", req.Search.Query)
	_, ok = svc.Back()
	assert.False(t, ok)
}

func TestKeysAreFreshPerResult(t *testing.T) {
	svc, _ := newMounted(t, 2, "")
	first := svc.Entities()[0].Key

	svc.Apply(svc.RunSearch(context.Background(), svc.OnSearchTextChange("")))
	assert.NotEqual(t, first, svc.Entities()[0].Key)
}
