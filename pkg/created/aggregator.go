// Package created enumerates all issues or merge requests created within one
// calendar year, driving the upstream listing endpoints to exhaustion.
//
// The service contract promises "all items in the year", not "first page":
// the aggregator follows the upstream pagination signals until they report no
// further pages, and any failure mid-pagination aborts the whole call. A
// truncated result is indistinguishable from a complete one, so partial
// results are never returned.
package created

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/platinummonkey/gitbridge/pkg/gitlab"
	"github.com/platinummonkey/gitbridge/pkg/resolve"
)

// Kind selects which listing endpoint is paged.
type Kind string

const (
	KindIssue        Kind = "issues"
	KindMergeRequest Kind = "merge_requests"
)

// ParseKind maps the inbound path values ("issues", "mr") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "issues":
		return KindIssue, nil
	case "mr", "merge_requests":
		return KindMergeRequest, nil
	default:
		return "", fmt.Errorf("invalid kind %q: must be \"issues\" or \"mr\"", s)
	}
}

// MinYear is the lower bound of plausible query years.
const MinYear = 2000

// ErrInvalidYear is returned for years outside [MinYear, current year + 1].
var ErrInvalidYear = errors.New("year out of range")

// Item is one created issue or merge request. The raw upstream record is
// passed through untouched; ID and CreatedAt are extracted for filtering and
// deduplication only.
type Item struct {
	ID        int64
	CreatedAt time.Time
	Raw       json.RawMessage
}

// Scope bounds a listing query. The zero value means instance-wide; a
// non-nil Ref restricts the query to one group or project.
type Scope struct {
	Ref *resolve.ResourceRef
}

// InstanceScope is the whole-instance scope.
var InstanceScope = Scope{}

// Aggregator pages upstream listing endpoints to completion.
type Aggregator struct {
	client   *gitlab.Client
	pageSize int
	onPage   func()
	now      func() time.Time
}

// NewAggregator creates an aggregator with the given page size. A page size
// of zero falls back to the upstream default.
func NewAggregator(client *gitlab.Client, pageSize int) *Aggregator {
	if pageSize <= 0 {
		pageSize = gitlab.DefaultPageSize
	}
	return &Aggregator{client: client, pageSize: pageSize, now: time.Now}
}

// SetPageObserver registers a callback invoked once per fetched page. Used to
// feed metrics. Must be set before the aggregator is shared across goroutines.
func (a *Aggregator) SetPageObserver(fn func()) {
	a.onPage = fn
}

// Collect returns every item of the given kind created within the calendar
// year, in upstream order. The year window is half-open: [Jan 1 year, Jan 1
// year+1), UTC. The result is complete or the call fails; it is never
// silently truncated.
func (a *Aggregator) Collect(ctx context.Context, kind Kind, year int, scope Scope) ([]Item, error) {
	if year < MinYear || year > a.now().UTC().Year()+1 {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidYear, year, MinYear, a.now().UTC().Year()+1)
	}

	windowStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(1, 0, 0)

	relPath, query := a.listQuery(kind, scope, windowStart, windowEnd)

	var out []Item
	page := 1
	for {
		query.Set("page", strconv.Itoa(page))
		raw, pageInfo, err := a.client.Get(ctx, relPath, query)
		if err != nil {
			return nil, fmt.Errorf("aggregation aborted on page %d: %w", page, err)
		}
		if a.onPage != nil {
			a.onPage()
		}

		batch, err := decodeItems(raw)
		if err != nil {
			return nil, fmt.Errorf("aggregation aborted on page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}

		// The upstream filter is inclusive at the edges; re-check the
		// half-open window client-side.
		for _, item := range batch {
			if !item.CreatedAt.Before(windowStart) && item.CreatedAt.Before(windowEnd) {
				out = append(out, item)
			}
		}

		if !pageInfo.HasNext() {
			break
		}
		page = pageInfo.Next()
	}

	return out, nil
}

// listQuery builds the endpoint path and the fixed query parameters for one
// aggregation call.
func (a *Aggregator) listQuery(kind Kind, scope Scope, start, end time.Time) (string, url.Values) {
	relPath := string(kind)
	query := url.Values{}
	if scope.Ref != nil {
		relPath = fmt.Sprintf("%ss/%d/%s", scope.Ref.Kind, scope.Ref.ID, kind)
	} else {
		query.Set("scope", "all")
	}
	query.Set("created_after", start.Format(time.RFC3339))
	query.Set("created_before", end.Format(time.RFC3339))
	query.Set("per_page", strconv.Itoa(a.pageSize))
	return relPath, query
}

func decodeItems(raw json.RawMessage) ([]Item, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode listing page: %w", err)
	}
	items := make([]Item, 0, len(records))
	for _, record := range records {
		var meta struct {
			ID        int64     `json:"id"`
			CreatedAt time.Time `json:"created_at"`
		}
		if err := json.Unmarshal(record, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode listing record: %w", err)
		}
		items = append(items, Item{ID: meta.ID, CreatedAt: meta.CreatedAt, Raw: record})
	}
	return items, nil
}
