package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/platinummonkey/gitbridge/pkg/gitlab"
	"github.com/platinummonkey/gitbridge/pkg/resolve"
)

// Action describes what the reconciler did to reach the desired level.
type Action string

const (
	ActionGranted Action = "granted"
	ActionChanged Action = "changed"
	ActionNoop    Action = "noop"
)

// MembershipSource tells whether an effective level comes from a direct
// assignment or from an ancestor group.
type MembershipSource string

const (
	SourceDirect    MembershipSource = "direct"
	SourceInherited MembershipSource = "inherited"
)

// Membership is the current state of one user on one resource. Fetched fresh
// on every grant request, never cached.
type Membership struct {
	UserID int64
	Level  Level
	Source MembershipSource
}

// ChangeResult reports the outcome of one grant request. PreviousLevel is nil
// when the user had no membership, direct or inherited, before the call.
type ChangeResult struct {
	Action        Action
	PreviousLevel *Level
	NewLevel      Level
}

// Reconciler reconciles a user's access level on a project or group with a
// desired level, issuing at most one mutating upstream call per request.
type Reconciler struct {
	client *gitlab.Client
}

// NewReconciler creates a reconciler backed by the given upstream client.
func NewReconciler(client *gitlab.Client) *Reconciler {
	return &Reconciler{client: client}
}

// Grant brings username's access on ref to the desired level.
//
// Legality is checked before anything else: Owner is never assignable at
// project scope. The username must match exactly one upstream user. The
// decision then follows the current membership state:
//
//   - no membership at all: create at desired (granted)
//   - direct membership at desired: no mutation (noop)
//   - direct membership at another level: update to desired (changed)
//   - inherited only, desired below the inherited level: the create is
//     attempted and the upstream 400 surfaces as *DowngradeBlockedError
//   - inherited only, desired at or above the inherited level: create a
//     direct membership (granted if the effective level is unchanged,
//     changed if it rises)
func (r *Reconciler) Grant(ctx context.Context, ref *resolve.ResourceRef, username string, desired Level) (*ChangeResult, error) {
	if !desired.Valid() {
		return nil, fmt.Errorf("invalid access level %d", desired)
	}
	if desired == Owner && ref.Kind == resolve.KindProject {
		return nil, ErrIllegalAssignment
	}

	userID, err := r.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}

	membersBase := fmt.Sprintf("%ss/%d/members", ref.Kind, ref.ID)

	direct, err := r.fetchMember(ctx, fmt.Sprintf("%s/%d", membersBase, userID), SourceDirect)
	if err != nil {
		return nil, err
	}

	if direct != nil {
		if direct.Level == desired {
			prev := direct.Level
			return &ChangeResult{Action: ActionNoop, PreviousLevel: &prev, NewLevel: desired}, nil
		}
		return r.mutate(ctx, "PUT", fmt.Sprintf("%s/%d", membersBase, userID), userID, desired, &direct.Level, ActionChanged, true)
	}

	// No direct record: the effective level may still be inherited from an
	// ancestor group.
	effective, err := r.fetchMember(ctx, fmt.Sprintf("%s/all/%d", membersBase, userID), SourceInherited)
	if err != nil {
		return nil, err
	}

	if effective == nil {
		// A fresh create has no inherited level to collide with; a 400 here is
		// an unrelated rejection, never a blocked downgrade.
		return r.mutate(ctx, "POST", membersBase, userID, desired, nil, ActionGranted, false)
	}

	prev := effective.Level
	action := ActionGranted
	if desired > effective.Level {
		action = ActionChanged
	}
	// desired < inherited is attempted anyway; the upstream rejects it with a
	// 400 that surfaces as DowngradeBlocked.
	return r.mutate(ctx, "POST", membersBase, userID, desired, &prev, action, true)
}

// lookupUser resolves a username to its numeric id, requiring an exact match.
// The search endpoint may return fuzzy matches; only an identical username
// counts.
func (r *Reconciler) lookupUser(ctx context.Context, username string) (int64, error) {
	q := url.Values{}
	q.Set("username", username)
	raw, _, err := r.client.Get(ctx, "users", q)
	if err != nil {
		return 0, err
	}
	var users []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &users); err != nil {
		return 0, fmt.Errorf("failed to decode user lookup response: %w", err)
	}
	for _, u := range users {
		if u.Username == username {
			return u.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUserNotFound, username)
}

// fetchMember reads one membership record, mapping an upstream 404 to "no
// membership".
func (r *Reconciler) fetchMember(ctx context.Context, relPath string, source MembershipSource) (*Membership, error) {
	raw, _, err := r.client.Get(ctx, relPath, nil)
	if err != nil {
		if gitlab.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var body struct {
		ID          int64 `json:"id"`
		AccessLevel int   `json:"access_level"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode membership response: %w", err)
	}
	return &Membership{UserID: body.ID, Level: Level(body.AccessLevel), Source: source}, nil
}

// mutate issues the single create-or-update call. An upstream 400 surfaces as
// DowngradeBlocked only where an inherited level can floor the mutation;
// everywhere else it is a plain upstream rejection.
func (r *Reconciler) mutate(ctx context.Context, method, relPath string, userID int64, desired Level, prev *Level, action Action, inheritedFloor bool) (*ChangeResult, error) {
	payload := map[string]any{
		"user_id":      userID,
		"access_level": int(desired),
	}
	var err error
	if method == "PUT" {
		_, err = r.client.Put(ctx, relPath, payload)
	} else {
		_, err = r.client.Post(ctx, relPath, payload)
	}
	if err != nil {
		if gitlab.IsBadRequest(err) {
			if inheritedFloor {
				return nil, &DowngradeBlockedError{Reason: upstreamReason(err)}
			}
			return nil, &UpstreamRejectedError{Reason: upstreamReason(err)}
		}
		return nil, err
	}
	return &ChangeResult{Action: action, PreviousLevel: prev, NewLevel: desired}, nil
}

// upstreamReason extracts the human-readable rejection message from an
// upstream error body, falling back to the raw body.
func upstreamReason(err error) string {
	var ue *gitlab.UpstreamError
	if !errors.As(err, &ue) {
		return ""
	}
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal([]byte(ue.Body), &body) == nil && len(body.Message) > 0 {
		var s string
		if json.Unmarshal(body.Message, &s) == nil {
			return s
		}
		return string(body.Message)
	}
	return ue.Body
}
