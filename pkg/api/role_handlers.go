package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/gitbridge/pkg/httputil"
	"github.com/platinummonkey/gitbridge/pkg/observability"
	"github.com/platinummonkey/gitbridge/pkg/resolve"
	"github.com/platinummonkey/gitbridge/pkg/roles"
)

// grantRole handles POST /roles/grant
func (s *Server) grantRole(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "invalid_request", err.Error())
		return
	}
	if req.Username == "" {
		httputil.WriteBadRequest(w, "invalid_request", "username is required")
		return
	}
	if req.Target == "" {
		httputil.WriteBadRequest(w, "invalid_request", "target is required")
		return
	}

	level, err := roles.ParseLevel(string(req.Role))
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_role", err.Error())
		return
	}

	ctx := r.Context()
	log := observability.FromContext(ctx)

	ref, err := s.resolver.Resolve(ctx, req.Target)
	if err != nil {
		s.writeResolveError(w, err)
		return
	}

	result, err := s.reconciler.Grant(ctx, ref, req.Username, level)
	if err != nil {
		s.writeGrantError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RoleChangesTotal.WithLabelValues(string(result.Action)).Inc()
	}
	log.WithFields(map[string]interface{}{
		"username": req.Username,
		"target":   ref.String(),
		"action":   string(result.Action),
		"level":    result.NewLevel.String(),
	}).Info("role grant handled")

	resp := GrantResponse{
		Action:   string(result.Action),
		NewLevel: result.NewLevel.String(),
	}
	if result.PreviousLevel != nil {
		resp.PreviousLevel = result.PreviousLevel.String()
	}
	httputil.WriteSuccess(w, resp)
}

func (s *Server) writeResolveError(w http.ResponseWriter, err error) {
	var notFound *resolve.ErrNotFound
	if errors.As(err, &notFound) {
		httputil.WriteNotFound(w, "target_not_found", notFound.Error())
		return
	}
	s.writeUpstreamError(w, err)
}

func (s *Server) writeGrantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roles.ErrUserNotFound):
		httputil.WriteNotFound(w, "user_not_found", err.Error())
	case errors.Is(err, roles.ErrIllegalAssignment):
		httputil.WriteBadRequest(w, "illegal_assignment", err.Error())
	default:
		var blocked *roles.DowngradeBlockedError
		if errors.As(err, &blocked) {
			httputil.WriteBadRequest(w, "downgrade_blocked", blocked.Error())
			return
		}
		var rejected *roles.UpstreamRejectedError
		if errors.As(err, &rejected) {
			httputil.WriteBadRequest(w, "upstream_rejected", rejected.Error())
			return
		}
		s.writeUpstreamError(w, err)
	}
}
