package router

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMatchWildcardRoute(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"/api/v1/exports/abc", "/api/v1/exports/*", true},
		{"/api/v1/exports/abc/errors", "/api/v1/exports/*", true},
		{"/api/v1/exports/abc/errors", "/api/v1/exports/*/errors", true},
		{"/api/v1/exports/abc/logs", "/api/v1/exports/*/errors", false},
		{"/api/v1/other/abc", "/api/v1/exports/*", false},
		{"/swagger/index.html", "/swagger/*", true},
		{"/swagger", "/swagger/*", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchWildcardRoute(tt.path, tt.pattern))
		})
	}
}

func TestRouter_Dispatch(t *testing.T) {
	r := New(zaptest.NewLogger(t))

	reply := func(body string) HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(body)) }
	}
	r.GET("/api/v1/exports", reply("list"))
	r.GET("/api/v1/exports/*/errors", reply("errors"))
	r.GET("/api/v1/exports/*", reply("get"))
	r.DELETE("/api/v1/exports/*", reply("cancel"))
	r.Handle(http.MethodGet, "/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/exports", http.StatusOK, "list"},
		{http.MethodGet, "/api/v1/exports/42", http.StatusOK, "get"},
		{http.MethodGet, "/api/v1/exports/42/errors", http.StatusOK, "errors"},
		{http.MethodDelete, "/api/v1/exports/42", http.StatusOK, "cancel"},
		{http.MethodPost, "/api/v1/exports/42", http.StatusMethodNotAllowed, ""},
		{http.MethodPut, "/api/v1/exports", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/metrics", http.StatusTeapot, ""},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}

	assert.Len(t, r.Routes(), 5)
	assert.Len(t, r.Paths(), 4)
}

func TestRouter_StartStopsWithContext(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	r := New(zaptest.NewLogger(t))
	r.GET("/ping", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("pong")) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
