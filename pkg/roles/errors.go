package roles

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when the username has no exact match upstream.
var ErrUserNotFound = errors.New("user not found")

// ErrIllegalAssignment is returned before any upstream mutation when the
// desired level is not assignable at the target's scope (project-level Owner).
var ErrIllegalAssignment = errors.New("owner is only assignable on groups")

// DowngradeBlockedError is returned when the upstream rejects a mutation that
// would set a direct level below an inherited one. Downgrading an inherited
// membership is not possible at the child scope; the upstream 400 is terminal
// and never retried.
type DowngradeBlockedError struct {
	Reason string
}

func (e *DowngradeBlockedError) Error() string {
	if e.Reason == "" {
		return "downgrade blocked by inherited membership"
	}
	return fmt.Sprintf("downgrade blocked by inherited membership: %s", e.Reason)
}

// UpstreamRejectedError is returned when the upstream refuses a mutation for
// a reason unrelated to inherited levels, e.g. a seat limit or an invalid
// member state. The rejection reason is passed through verbatim.
type UpstreamRejectedError struct {
	Reason string
}

func (e *UpstreamRejectedError) Error() string {
	if e.Reason == "" {
		return "role change rejected by upstream"
	}
	return fmt.Sprintf("role change rejected by upstream: %s", e.Reason)
}
