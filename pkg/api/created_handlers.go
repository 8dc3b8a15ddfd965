package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/platinummonkey/gitbridge/pkg/created"
	"github.com/platinummonkey/gitbridge/pkg/gitlab"
	"github.com/platinummonkey/gitbridge/pkg/httputil"
	"github.com/platinummonkey/gitbridge/pkg/observability"
)

// listCreated handles GET /created/{kind}/{year}
func (s *Server) listCreated(w http.ResponseWriter, r *http.Request) {
	kindStr, err := httputil.ParsePathString(r, "kind")
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_kind", err.Error())
		return
	}
	kind, err := created.ParseKind(kindStr)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_kind", err.Error())
		return
	}

	year, err := httputil.ParsePathInt(r, "year")
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_year", err.Error())
		return
	}

	ctx := r.Context()
	log := observability.FromContext(ctx)

	scope := created.InstanceScope
	if target := httputil.ParseQueryString(r, "target", ""); target != "" {
		ref, err := s.resolver.Resolve(ctx, target)
		if err != nil {
			s.writeResolveError(w, err)
			return
		}
		scope = created.Scope{Ref: ref}
	}

	items, err := s.aggregator.Collect(ctx, kind, year, scope)
	if err != nil {
		if errors.Is(err, created.ErrInvalidYear) {
			httputil.WriteBadRequest(w, "invalid_year", err.Error())
			return
		}
		s.writeUpstreamError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.ItemsListedTotal.WithLabelValues(string(kind)).Add(float64(len(items)))
	}
	log.WithFields(map[string]interface{}{
		"kind":  string(kind),
		"year":  year,
		"items": len(items),
	}).Info("year listing handled")

	// An empty year is a valid, complete answer.
	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		records = append(records, item.Raw)
	}
	httputil.WriteSuccess(w, records)
}

// writeUpstreamError maps upstream call failures onto gateway statuses:
// timeouts become 504, everything else 502.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	var upstream *gitlab.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.Timeout() {
			httputil.WriteGatewayTimeout(w, "upstream_timeout", upstream.Error())
			return
		}
		httputil.WriteBadGateway(w, "upstream_error", upstream.Error())
		return
	}
	httputil.WriteInternalError(w, err.Error())
}
