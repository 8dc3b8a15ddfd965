// Package cli implements the gitbridge command line interface.
//
// The CLI talks to the GitLab instance directly, without going through a
// running gitbridge server; it shares the resolver, reconciler, and
// aggregator with the HTTP service.
//
// Usage:
//
//	gitbridge grant-role -username alice -target group/app -role developer
//	gitbridge list -kind issues -year 2025
//	gitbridge list -kind mr -year 2025 -target group -output mrs.json
//
// Connection settings default to $GITLAB_URL, $GITLAB_TOKEN, and
// $GITLAB_VERIFY_SSL, and can be overridden per invocation with -url, -token,
// and -insecure.
package cli
