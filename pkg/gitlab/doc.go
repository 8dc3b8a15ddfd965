// Package gitlab provides a thin HTTP transport over the GitLab REST API (v4).
//
// # Overview
//
// The client holds one shared connection pool for the process lifetime and
// injects the configured private token on every call. It does not recover from
// errors: every non-2xx response and every transport failure is classified
// into *UpstreamError and surfaced to the caller, which decides what an
// upstream 400 vs 404 vs 5xx means for its own operation.
//
// # Usage Example
//
//	client, err := gitlab.NewClient(gitlab.Config{
//		BaseURL: "https://gitlab.example.com",
//		Token:   os.Getenv("GITLAB_TOKEN"),
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	raw, page, err := client.Get(ctx, "projects/42", nil)
//
// # Pagination
//
// Listing responses carry GitLab's pagination headers (X-Page, X-Next-Page,
// X-Total-Pages), exposed as PageInfo. Either the next-page signal or the
// total-page count drives continuation; both forms are supported.
//
// # Related Packages
//
//   - pkg/resolve: resolves human paths to project/group IDs
//   - pkg/roles: reconciles membership levels
//   - pkg/created: exhaustively pages listing endpoints
package gitlab
