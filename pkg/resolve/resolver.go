// Package resolve converts human-supplied slash-separated paths into typed,
// numeric-identified GitLab resources (projects or groups).
//
// A full path like "group/subgroup/project" is ambiguous by shape alone: the
// trailing segment may name a project or a subgroup. The resolver never
// guesses from the segment count; it asks the upstream, trying the path as a
// project first and as a group second. Project-first precedence is the
// contract for the (platform-dependent) case where both lookups succeed.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/platinummonkey/gitbridge/pkg/gitlab"
)

// Kind discriminates the two resolvable resource types.
type Kind string

const (
	KindProject Kind = "project"
	KindGroup   Kind = "group"
)

// ResourceRef identifies a resolved resource. Immutable once produced. The
// kind is determined by which upstream lookup succeeded, never inferred from
// the path shape.
type ResourceRef struct {
	Kind     Kind
	ID       int64
	FullPath string
}

// String returns a short human-readable form, e.g. "project group/app (id 42)".
func (r ResourceRef) String() string {
	return fmt.Sprintf("%s %s (id %d)", r.Kind, r.FullPath, r.ID)
}

// ErrNotFound is returned when a path resolves as neither project nor group.
type ErrNotFound struct {
	Path string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("target %q not found as project or group", e.Path)
}

// Resolver resolves paths against the upstream.
type Resolver struct {
	client *gitlab.Client
}

// NewResolver creates a resolver backed by the given upstream client.
func NewResolver(client *gitlab.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve looks up path as a project first, then as a group. At most two
// upstream read calls are made; the first success short-circuits. Both
// missing yields *ErrNotFound; any other upstream failure propagates as-is.
func (r *Resolver) Resolve(ctx context.Context, path string) (*ResourceRef, error) {
	if path == "" {
		return nil, &ErrNotFound{Path: path}
	}
	encoded := url.PathEscape(path)

	ref, err := r.lookup(ctx, "projects/"+encoded, KindProject, path)
	if err == nil {
		return ref, nil
	}
	if !gitlab.IsNotFound(err) {
		return nil, err
	}

	ref, err = r.lookup(ctx, "groups/"+encoded, KindGroup, path)
	if err == nil {
		return ref, nil
	}
	if !gitlab.IsNotFound(err) {
		return nil, err
	}
	return nil, &ErrNotFound{Path: path}
}

func (r *Resolver) lookup(ctx context.Context, relPath string, kind Kind, fullPath string) (*ResourceRef, error) {
	raw, _, err := r.client.Get(ctx, relPath, nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode %s lookup response: %w", kind, err)
	}
	if body.ID <= 0 {
		return nil, fmt.Errorf("%s lookup for %q returned no id", kind, fullPath)
	}
	return &ResourceRef{Kind: kind, ID: body.ID, FullPath: fullPath}, nil
}
