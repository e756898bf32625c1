package smartset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marcinmaslon/wolf-comm/internal/tokencache"
)

// stubAuth stands in for the login handshake.
type stubAuth struct {
	logins atomic.Int32
	token  tokencache.Token
	err    error
}

func (s *stubAuth) Login(ctx context.Context) (tokencache.Token, error) {
	s.logins.Add(1)
	if s.err != nil {
		return tokencache.Token{}, s.err
	}
	return s.token, nil
}

// portalStub is a fake portal with call counters for the session routes.
type portalStub struct {
	mux *http.ServeMux

	sessionCreates  atomic.Int32
	sessionRefreshs atomic.Int32
	failRefresh     atomic.Bool
}

func newPortalStub() *portalStub {
	p := &portalStub{mux: http.NewServeMux()}
	p.mux.HandleFunc("POST "+createSessionRoute, func(w http.ResponseWriter, r *http.Request) {
		p.sessionCreates.Add(1)
		fmt.Fprintf(w, `{"BrowserSessionId": %d}`, 100+p.sessionCreates.Load())
	})
	p.mux.HandleFunc("POST "+updateSessionRoute, func(w http.ResponseWriter, r *http.Request) {
		if p.failRefresh.Load() {
			http.Error(w, "session gone", http.StatusInternalServerError)
			return
		}
		p.sessionRefreshs.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	return p
}

func (p *portalStub) handle(pattern string, handler http.HandlerFunc) {
	p.mux.HandleFunc(pattern, handler)
}

func newTestClient(t *testing.T, portal *portalStub, opts ...Option) (*Client, *stubAuth) {
	t.Helper()

	srv := httptest.NewServer(portal.mux)
	t.Cleanup(srv.Close)

	sa := &stubAuth{token: tokencache.Token{
		Username:    "anna",
		AccessToken: "tok-1",
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}}

	base := []Option{
		WithBaseURL(srv.URL),
		WithAuthenticator(sa),
		WithTokenCachePath(filepath.Join(t.TempDir(), "cache.json")),
	}
	return New("anna", "pw", append(base, opts...)...), sa
}

func mustJSON(t *testing.T, r *http.Request, target any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encoding response body: %v", err)
	}
}
