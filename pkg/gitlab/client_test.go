package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Token:   "test-token",
	}, nil)
	require.NoError(t, err)
	return client, srv
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing token",
			cfg:     Config{BaseURL: "http://gitlab.local"},
			wantErr: "token is required",
		},
		{
			name:    "missing base URL",
			cfg:     Config{Token: "t"},
			wantErr: "base URL is required",
		},
		{
			name:    "bad scheme",
			cfg:     Config{BaseURL: "ftp://gitlab.local", Token: "t"},
			wantErr: "scheme must be http or https",
		},
		{
			name: "valid",
			cfg:  Config{BaseURL: "http://gitlab.local", Token: "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestClientInjectsToken(t *testing.T) {
	var gotToken string
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]int{"id": 1})
	}))

	_, _, err := client.Get(context.Background(), "projects/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "/api/v4/projects/1", gotPath)
}

func TestClientTrailingSlashNormalization(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// Base URL without trailing slash must still hit /api/v4/.
	client, err := NewClient(Config{BaseURL: srv.URL, Token: "t"}, nil)
	require.NoError(t, err)

	_, _, err = client.Get(context.Background(), "version", nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v4/version", gotPath)
}

func TestClientNon2xxReturnsUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"access level should be greater"}`))
	}))

	_, _, err := client.Get(context.Background(), "projects/1", nil)
	require.Error(t, err)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadRequest, ue.StatusCode)
	assert.Contains(t, ue.Body, "access level")
	assert.True(t, IsBadRequest(err))
	assert.False(t, IsNotFound(err))
}

func TestClientTransportErrorHasNoStatus(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1", Token: "t"}, nil)
	require.NoError(t, err)

	_, _, err = client.Get(context.Background(), "version", nil)
	require.Error(t, err)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.StatusCode)
	assert.Error(t, ue.Err)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Token:   "t",
		Timeout: 20 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	_, _, err = client.Get(context.Background(), "version", nil)
	require.Error(t, err)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.Timeout())
}

func TestClientPostSendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 7}`))
	}))

	_, err := client.Post(context.Background(), "projects/1/members", map[string]any{
		"user_id":      7,
		"access_level": 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, float64(7), gotBody["user_id"])
	assert.Equal(t, float64(30), gotBody["access_level"])
}

func TestClientQueryParameters(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))

	q := url.Values{}
	q.Set("username", "alice")
	_, _, err := client.Get(context.Background(), "users", q)
	require.NoError(t, err)
	assert.Equal(t, "alice", gotQuery.Get("username"))
}

func TestClientObserverReceivesOutcome(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"404 Not Found"}`))
	}))

	var observedStatus int
	var observedEndpoint string
	client.SetObserver(func(method, endpoint string, status int, duration time.Duration) {
		observedEndpoint = endpoint
		observedStatus = status
	})

	client.Get(context.Background(), "groups/nope", nil)
	assert.Equal(t, http.StatusNotFound, observedStatus)
	assert.Equal(t, "groups/nope", observedEndpoint)
}

func TestPageInfo(t *testing.T) {
	tests := []struct {
		name     string
		info     *PageInfo
		hasNext  bool
		nextPage int
	}{
		{
			name:    "nil info",
			info:    nil,
			hasNext: false,
		},
		{
			name:     "next page header present",
			info:     &PageInfo{Page: 1, NextPage: 2},
			hasNext:  true,
			nextPage: 2,
		},
		{
			name:    "exhausted via empty next page",
			info:    &PageInfo{Page: 3, TotalPages: 3},
			hasNext: false,
		},
		{
			name:     "total pages fallback",
			info:     &PageInfo{Page: 1, TotalPages: 4},
			hasNext:  true,
			nextPage: 2,
		},
		{
			name:    "no signals at all",
			info:    &PageInfo{},
			hasNext: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasNext, tt.info.HasNext())
			if tt.hasNext {
				assert.Equal(t, tt.nextPage, tt.info.Next())
			}
		})
	}
}

func TestParsePageInfoFromHeaders(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Page", "2")
		w.Header().Set("X-Next-Page", "3")
		w.Header().Set("X-Total-Pages", "5")
		w.Write([]byte(`[]`))
	}))

	_, page, err := client.Get(context.Background(), "issues", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.NextPage)
	assert.Equal(t, 5, page.TotalPages)
}
