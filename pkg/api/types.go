package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/platinummonkey/gitbridge/pkg/created"
	"github.com/platinummonkey/gitbridge/pkg/resolve"
	"github.com/platinummonkey/gitbridge/pkg/roles"
)

// Resolver resolves a human path to a project or group reference.
type Resolver interface {
	Resolve(ctx context.Context, path string) (*resolve.ResourceRef, error)
}

// Reconciler reconciles a user's access level on a resource.
type Reconciler interface {
	Grant(ctx context.Context, ref *resolve.ResourceRef, username string, desired roles.Level) (*roles.ChangeResult, error)
}

// Aggregator collects all items of a kind created within a year.
type Aggregator interface {
	Collect(ctx context.Context, kind created.Kind, year int, scope created.Scope) ([]created.Item, error)
}

// RoleLiteral accepts both JSON string and JSON number forms of a role.
type RoleLiteral string

// UnmarshalJSON implements json.Unmarshaler
func (r *RoleLiteral) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = RoleLiteral(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*r = RoleLiteral(n.String())
		return nil
	}
	return fmt.Errorf("role must be a string or an integer")
}

// GrantRequest is the body of POST /roles/grant. Role accepts either a role
// name ("developer") or a numeric level (30 or "30").
type GrantRequest struct {
	Username string      `json:"username"`
	Target   string      `json:"target"`
	Role     RoleLiteral `json:"role"`
}

// GrantResponse reports the reconciliation outcome.
type GrantResponse struct {
	Action        string `json:"action"`
	PreviousLevel string `json:"previous_level,omitempty"`
	NewLevel      string `json:"new_level"`
}
