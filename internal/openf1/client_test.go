package openf1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, observability.Discard(), observability.NewMetricsForTesting())
}

func TestClient_GetBuildsSortedQuery(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"session_key": 9158}]`))
	})

	body, err := c.Get(context.Background(), "sessions", Params{"year": "2023", "session_name": "Race"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"session_key": 9158}]`, string(body))
	assert.Equal(t, "/sessions", gotPath)
	assert.Equal(t, "session_name=Race&year=2023", gotQuery)
}

func TestClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", nil, nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultBaseURL+"/drivers?session_key=1", c.URL("drivers", Int("session_key", 1)))

	c = NewClient("http://mirror.local/v1/", nil, nil)
	assert.Equal(t, "http://mirror.local/v1/laps", c.URL("laps", nil))
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
		substr string
	}{
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrRateLimited},
		{name: "server error", status: http.StatusBadGateway, substr: "unexpected status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.Get(context.Background(), "laps", nil)
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			}
			if tt.substr != "" {
				assert.Contains(t, err.Error(), tt.substr)
			}
		})
	}
}

func TestClient_RejectsMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "truncated", body: `[{"position": 1`},
		{name: "html", body: `<html>oops</html>`},
		{name: "object", body: `{"detail": "No results found."}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Get(context.Background(), "laps", nil)
			assert.Error(t, err)
		})
	}
}

func TestClient_BodyLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[" + strings.Repeat(" ", maxBodySize) + "]"))
	})
	_, err := c.Get(context.Background(), "position", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "laps", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKey_OrderIndependent(t *testing.T) {
	a := Params{"session_key": "9158", "driver_number": "1"}
	b := Params{}
	b["driver_number"] = "1"
	b["session_key"] = "9158"

	assert.Equal(t, Key("laps", a), Key("laps", b))
	assert.Equal(t, "laps?driver_number=1&session_key=9158", Key("laps", a))
	assert.Equal(t, "meetings", Key("meetings", nil))
	assert.NotEqual(t, Key("laps", a), Key("stints", a))
}

func TestParams_WithOmitsZero(t *testing.T) {
	p := Params{}.WithInt("year", 2024).WithInt("meeting_key", 0).With("session_name", "")
	assert.Equal(t, Params{"year": "2024"}, p)
}
