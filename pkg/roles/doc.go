// Package roles reconciles a user's GitLab access level with a desired level.
//
// # Overview
//
// A grant request names a user, a resolved project or group, and a desired
// level. The reconciler fetches the user's current membership fresh on every
// request, including the effective level inherited from ancestor groups, and
// issues the minimal mutation: one membership create, one update, or nothing
// when the direct level already matches.
//
// # Access Levels
//
// The five standard GitLab tiers, ordered:
//
//	guest(10) < reporter(20) < developer(30) < maintainer(40) < owner(50)
//
// ParseLevel accepts both the role name and the numeric level. Owner is a
// legal assignment target only on groups; a project-scope Owner request fails
// with ErrIllegalAssignment before any upstream call.
//
// # Inherited Memberships
//
// A level inherited from a parent group cannot be lowered by a direct
// assignment at the child scope. The reconciler does not second-guess the
// upstream here: the mutation is attempted and the upstream's 400 rejection
// surfaces as *DowngradeBlockedError carrying the rejection reason. A 400 on
// a path where no inherited level exists is a different condition and
// surfaces as *UpstreamRejectedError instead.
package roles
