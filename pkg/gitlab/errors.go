package gitlab

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// UpstreamError is returned for every failed upstream call: any non-2xx HTTP
// response (StatusCode and Body set) or a transport failure (Err set,
// StatusCode zero). Callers rely on the status code to distinguish illegal
// mutations (400) from missing resources (404) from upstream outages (5xx).
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream call failed: %v", e.Err)
	}
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call failed because the per-call deadline
// expired.
func (e *UpstreamError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// IsStatus reports whether err is an UpstreamError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == status
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsBadRequest reports whether err is an upstream 400.
func IsBadRequest(err error) bool {
	return IsStatus(err, http.StatusBadRequest)
}
