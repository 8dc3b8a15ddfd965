// Package api implements the inbound HTTP surface: role grants and calendar
// year listings over the upstream GitLab instance.
//
// # Endpoints
//
//	POST /roles/grant            grant or reconcile a user's role on a path
//	GET  /created/{kind}/{year}  all issues or MRs created within a year
//
// Upstream failures map onto gateway statuses: 502 for upstream errors, 504
// for upstream timeouts. Client mistakes (bad role, bad year, unresolvable
// path, unknown user, blocked downgrade) stay in the 4xx range.
package api
