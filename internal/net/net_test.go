package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pi-monitor/internal/net/config"

	"github.com/stretchr/testify/assert"
)

func TestCheckOutcomes(t *testing.T) {
	testCases := []struct {
		name               string
		handler            http.HandlerFunc
		timeout            time.Duration
		expectedKind       config.OutcomeKind
		expectedStatusCode int
		expectedBody       string
		expectedDesc       string
	}{
		{
			name: "200 with body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("all systems nominal"))
			},
			timeout:            5 * time.Second,
			expectedKind:       config.Success,
			expectedStatusCode: http.StatusOK,
			expectedBody:       "all systems nominal",
		},
		{
			name: "non-200 is still a success outcome",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			timeout:            5 * time.Second,
			expectedKind:       config.Success,
			expectedStatusCode: http.StatusServiceUnavailable,
		},
		{
			name: "slow server times out",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout:      50 * time.Millisecond,
			expectedKind: config.TransportFailure,
			expectedDesc: "timeout",
		},
		{
			name: "connection closed prematurely",
			handler: func(w http.ResponseWriter, r *http.Request) {
				hj, ok := w.(http.Hijacker)
				if !ok {
					http.Error(w, "webserver doesn't support hijacking", http.StatusInternalServerError)
					return
				}
				conn, _, err := hj.Hijack()
				if err != nil {
					return
				}
				conn.Close()
			},
			timeout:      5 * time.Second,
			expectedKind: config.TransportFailure,
			expectedDesc: "connection closed prematurely (EOF)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			nc := &NetworkConfig{FollowRedirects: true}
			outcome := nc.Check(context.Background(), server.URL, tc.timeout)

			assert.Equal(t, tc.expectedKind, outcome.Kind)
			assert.Equal(t, server.URL, outcome.URL)
			assert.False(t, outcome.CheckedAt.IsZero())
			if tc.expectedKind == config.Success {
				assert.Equal(t, tc.expectedStatusCode, outcome.StatusCode)
				assert.Equal(t, tc.expectedBody, outcome.Body)
				assert.Empty(t, outcome.Description)
			} else {
				assert.Equal(t, tc.expectedDesc, outcome.Description)
			}
		})
	}
}

func TestCheckConnectionRefused(t *testing.T) {
	nc := &NetworkConfig{}
	outcome := nc.Check(context.Background(), "http://127.0.0.1:1", time.Second)

	assert.Equal(t, config.TransportFailure, outcome.Kind)
	assert.Equal(t, "connection refused", outcome.Description)
}

func TestCheckInvalidURL(t *testing.T) {
	nc := &NetworkConfig{}
	outcome := nc.Check(context.Background(), "://missing-scheme", time.Second)

	assert.Equal(t, config.TransportFailure, outcome.Kind)
	assert.Contains(t, outcome.Description, "invalid request")
}

func TestCheckRedirectPolicy(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("landed"))
	}))
	defer target.Close()

	redirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer redirect.Close()

	follow := &NetworkConfig{FollowRedirects: true}
	outcome := follow.Check(context.Background(), redirect.URL, 5*time.Second)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Equal(t, "landed", outcome.Body)

	stay := &NetworkConfig{FollowRedirects: false}
	outcome = stay.Check(context.Background(), redirect.URL, 5*time.Second)
	assert.Equal(t, http.StatusFound, outcome.StatusCode)
}

func TestIsIPAddress(t *testing.T) {
	assert.True(t, isIPAddress("https://192.168.1.10:8443/health"))
	assert.False(t, isIPAddress("https://example.com"))
}
