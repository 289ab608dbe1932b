// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/desertthunder/insights/internal/shared"
)

// TopTracksJSON is a trimmed Spotify "Get User's Top Tracks" payload.
const TopTracksJSON = `{"href":"https://api.spotify.com/v1/me/top/tracks?offset=0&limit=20&time_range=medium_term","limit":20,"next":null,"offset":0,"previous":null,"total":1,"items":[{"id":"4uLU6hMCjMI75M1A2tKUQC","name":"Never Gonna Give You Up","artists":[{"name":"Rick Astley"}],"album":{"name":"Whenever You Need Somebody","images":[{"url":"https://i.scdn.co/image/ab67616d0000b273","height":640,"width":640}]},"duration_ms":213573,"popularity":77}]}`

// ProviderStub is an [httptest.Server] standing in for the Spotify accounts service and Web API.
//
// POST /api/token accepts ValidCode and rejects everything else with invalid_grant.
// GET /v1/me/top/tracks records the request and replies with TopTracksStatus and TopTracksBody.
type ProviderStub struct {
	*httptest.Server

	ValidCode       string
	AccessToken     string
	TopTracksStatus int
	TopTracksBody   string
	RetryAfter      string

	mu        sync.Mutex
	lastAuth  string
	lastQuery url.Values
	calls     int
}

// NewProviderStub starts a stub provider that is closed when the test ends.
func NewProviderStub(t *testing.T) *ProviderStub {
	t.Helper()

	p := &ProviderStub{
		ValidCode:       "valid_code",
		AccessToken:     "stub_access_token",
		TopTracksStatus: http.StatusOK,
		TopTracksBody:   TopTracksJSON,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", p.token)
	mux.HandleFunc("/v1/me/top/tracks", p.topTracks)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Close)

	return p
}

func (p *ProviderStub) token(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, _, ok := r.BasicAuth(); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_client"})
		return
	}

	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "authorization_code" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unsupported_grant_type"})
		return
	}

	if r.PostForm.Get("code") != p.ValidCode {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid authorization code",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"access_token":  p.AccessToken,
		"token_type":    "Bearer",
		"expires_in":    3600,
		"refresh_token": "stub_refresh_token",
		"scope":         "user-top-read",
	})
}

func (p *ProviderStub) topTracks(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.lastAuth = r.Header.Get("Authorization")
	p.lastQuery = r.URL.Query()
	p.calls++
	p.mu.Unlock()

	if p.RetryAfter != "" {
		w.Header().Set("Retry-After", p.RetryAfter)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(p.TopTracksStatus)
	io.WriteString(w, p.TopTracksBody)
}

// SpotifyConfig returns client configuration pointing every endpoint at the stub.
func (p *ProviderStub) SpotifyConfig() shared.SpotifyConfig {
	return shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://localhost:5000/api/auth/callback",
		AuthURL:      p.URL + "/authorize",
		TokenURL:     p.URL + "/api/token",
		APIURL:       p.URL + "/v1",
	}
}

// LastAuthorization returns the Authorization header of the most recent top tracks call.
func (p *ProviderStub) LastAuthorization() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAuth
}

// LastQuery returns the query parameters of the most recent top tracks call.
func (p *ProviderStub) LastQuery() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastQuery
}

// Calls returns how many top tracks requests reached the stub.
func (p *ProviderStub) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}
