package created

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/gitbridge/pkg/gitlab"
	"github.com/platinummonkey/gitbridge/pkg/resolve"
)

type listedItem struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Title     string `json:"title"`
}

// pagedUpstream serves a fixed item set in pages, reporting X-Next-Page and
// X-Total-Pages the way GitLab does.
type pagedUpstream struct {
	items    []listedItem
	pageSize int
	calls    int
	failPage int // return 503 when this page is requested (0 = never)

	lastPath  string
	lastQuery map[string]string
}

func (u *pagedUpstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls++
		u.lastPath = r.URL.Path
		u.lastQuery = map[string]string{}
		for k := range r.URL.Query() {
			u.lastQuery[k] = r.URL.Query().Get(k)
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		if u.failPage > 0 && page == u.failPage {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"upstream unavailable"}`))
			return
		}

		perPage := u.pageSize
		totalPages := (len(u.items) + perPage - 1) / perPage
		start := (page - 1) * perPage
		end := start + perPage
		if start > len(u.items) {
			start, end = len(u.items), len(u.items)
		}
		if end > len(u.items) {
			end = len(u.items)
		}

		w.Header().Set("X-Page", strconv.Itoa(page))
		if page < totalPages {
			w.Header().Set("X-Next-Page", strconv.Itoa(page+1))
		}
		w.Header().Set("X-Total-Pages", strconv.Itoa(totalPages))
		json.NewEncoder(w).Encode(u.items[start:end])
	})
}

func yearItems(year, count int) []listedItem {
	items := make([]listedItem, count)
	for i := range items {
		created := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(i) * time.Hour)
		items[i] = listedItem{
			ID:        int64(i + 1),
			CreatedAt: created.Format(time.RFC3339),
			Title:     fmt.Sprintf("item %d", i+1),
		}
	}
	return items
}

func newAggregator(t *testing.T, u *pagedUpstream, pageSize int) *Aggregator {
	t.Helper()
	srv := httptest.NewServer(u.handler())
	t.Cleanup(srv.Close)

	client, err := gitlab.NewClient(gitlab.Config{BaseURL: srv.URL, Token: "t"}, nil)
	require.NoError(t, err)
	return NewAggregator(client, pageSize)
}

func TestCollectExhaustsAllPages(t *testing.T) {
	// 250 matching issues at page size 100: exactly 3 pages, 3 calls.
	u := &pagedUpstream{items: yearItems(2025, 250), pageSize: 100}
	agg := newAggregator(t, u, 100)

	items, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.NoError(t, err)
	assert.Len(t, items, 250)
	assert.Equal(t, 3, u.calls, "exactly one call per page, no extra call after exhaustion")

	seen := map[int64]bool{}
	for _, item := range items {
		assert.False(t, seen[item.ID], "no duplicates across page boundaries")
		seen[item.ID] = true
	}
}

func TestCollectReportsEachFetchedPage(t *testing.T) {
	u := &pagedUpstream{items: yearItems(2025, 250), pageSize: 100}
	agg := newAggregator(t, u, 100)

	var observed int
	agg.SetPageObserver(func() { observed++ })

	_, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.NoError(t, err)
	assert.Equal(t, 3, observed, "one observation per fetched page")
	assert.Equal(t, u.calls, observed)
}

func TestCollectSinglePage(t *testing.T) {
	u := &pagedUpstream{items: yearItems(2025, 5), pageSize: 100}
	agg := newAggregator(t, u, 100)

	items, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 1, u.calls)
}

func TestCollectEmptyResult(t *testing.T) {
	u := &pagedUpstream{items: nil, pageSize: 100}
	agg := newAggregator(t, u, 100)

	items, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, u.calls)
}

func TestCollectSendsDateWindowAndScope(t *testing.T) {
	u := &pagedUpstream{items: nil, pageSize: 100}
	agg := newAggregator(t, u, 100)

	_, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.NoError(t, err)

	assert.Equal(t, "/api/v4/issues", u.lastPath)
	assert.Equal(t, "all", u.lastQuery["scope"])
	assert.Equal(t, "2025-01-01T00:00:00Z", u.lastQuery["created_after"])
	assert.Equal(t, "2026-01-01T00:00:00Z", u.lastQuery["created_before"])
	assert.Equal(t, "100", u.lastQuery["per_page"])
}

func TestCollectScopedToProject(t *testing.T) {
	u := &pagedUpstream{items: nil, pageSize: 100}
	agg := newAggregator(t, u, 100)

	scope := Scope{Ref: &resolve.ResourceRef{Kind: resolve.KindProject, ID: 42, FullPath: "acme/app"}}
	_, err := agg.Collect(context.Background(), KindMergeRequest, 2025, scope)
	require.NoError(t, err)

	assert.Equal(t, "/api/v4/projects/42/merge_requests", u.lastPath)
	assert.Empty(t, u.lastQuery["scope"], "scope=all only applies instance-wide")
}

func TestCollectScopedToGroup(t *testing.T) {
	u := &pagedUpstream{items: nil, pageSize: 100}
	agg := newAggregator(t, u, 100)

	scope := Scope{Ref: &resolve.ResourceRef{Kind: resolve.KindGroup, ID: 3, FullPath: "acme"}}
	_, err := agg.Collect(context.Background(), KindIssue, 2025, scope)
	require.NoError(t, err)
	assert.Equal(t, "/api/v4/groups/3/issues", u.lastPath)
}

func TestCollectFiltersYearWindowClientSide(t *testing.T) {
	// An upstream with an inclusive created_before filter may return the
	// first instant of the next year; it must be discarded.
	items := []listedItem{
		{ID: 1, CreatedAt: "2024-12-31T23:59:59Z"},
		{ID: 2, CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: 3, CreatedAt: "2025-07-15T12:00:00Z"},
		{ID: 4, CreatedAt: "2026-01-01T00:00:00Z"},
	}
	u := &pagedUpstream{items: items, pageSize: 100}
	agg := newAggregator(t, u, 100)

	got, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	windowStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(1, 0, 0)
	for _, item := range got {
		assert.False(t, item.CreatedAt.Before(windowStart))
		assert.True(t, item.CreatedAt.Before(windowEnd))
	}
}

func TestCollectMidPaginationFailureAbortsAll(t *testing.T) {
	u := &pagedUpstream{items: yearItems(2025, 250), pageSize: 100, failPage: 3}
	agg := newAggregator(t, u, 100)

	items, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.Error(t, err)
	assert.Nil(t, items, "partial results are discarded")
	assert.True(t, gitlab.IsStatus(err, http.StatusServiceUnavailable))
}

func TestCollectInvalidYear(t *testing.T) {
	agg := NewAggregator(nil, 100)
	agg.now = func() time.Time { return time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC) }

	for _, year := range []int{1999, 42, -1, 2028, 10000} {
		_, err := agg.Collect(context.Background(), KindIssue, year, InstanceScope)
		assert.ErrorIs(t, err, ErrInvalidYear, "year %d", year)
	}

	// current year + 1 is the inclusive upper bound
	u := &pagedUpstream{items: nil, pageSize: 100}
	agg = newAggregator(t, u, 100)
	agg.now = func() time.Time { return time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC) }
	_, err := agg.Collect(context.Background(), KindIssue, 2027, InstanceScope)
	assert.NoError(t, err)
}

func TestCollectPassesRawPayloadThrough(t *testing.T) {
	u := &pagedUpstream{items: yearItems(2025, 1), pageSize: 100}
	agg := newAggregator(t, u, 100)

	items, err := agg.Collect(context.Background(), KindIssue, 2025, InstanceScope)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var decoded listedItem
	require.NoError(t, json.Unmarshal(items[0].Raw, &decoded))
	assert.Equal(t, "item 1", decoded.Title)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "issues", want: KindIssue},
		{input: "mr", want: KindMergeRequest},
		{input: "merge_requests", want: KindMergeRequest},
		{input: "epics", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
