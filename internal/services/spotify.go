// Spotify implementation of [Authenticator] and [TracksProvider]
//
// Spotify API reference: https://developer.spotify.com/documentation/web-api/reference/get-users-top-artists-and-tracks
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/insights/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	oauthspotify "golang.org/x/oauth2/spotify"
)

const (
	spotifyBaseURL   = "https://api.spotify.com/v1"
	topTracksPath    = "/me/top/tracks"
	serviceNameLabel = "Spotify"
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopePlaylistModifyPublic,
}

// SpotifyService implements [Authenticator] and [TracksProvider] for the Spotify accounts service and Web API.
//
// It holds only immutable client configuration and is safe for concurrent use.
type SpotifyService struct {
	config     *oauth2.Config
	api        *APIService
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service from static client configuration.
//
// The client is used for both the token exchange and API calls; nil means [http.DefaultClient].
func NewSpotifyService(cfg shared.SpotifyConfig, client *http.Client) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("%w: missing redirect_uri", shared.ErrMissingCredentials)
	}

	if client == nil {
		client = http.DefaultClient
	}

	endpoint := oauthspotify.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInHeader
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = spotifyBaseURL
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       append([]string(nil), scopes...),
			Endpoint:     endpoint,
		},
		api:        NewAPIService(apiURL, client),
		httpClient: client,
	}, nil
}

func (s *SpotifyService) Name() string {
	return serviceNameLabel
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
//
// A grant the provider rejects wraps [shared.ErrTokenExchange]; an unreachable provider wraps
// [shared.ErrServiceUnavailable].
func (s *SpotifyService) Exchange(ctx context.Context, code string) ExchangeResult {
	if strings.TrimSpace(code) == "" {
		return NewExchangeResult(nil, fmt.Errorf("%w: missing authorization code", shared.ErrTokenExchange))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return NewExchangeResult(nil, classifyExchangeError(err))
	}

	return NewExchangeResult(token, nil)
}

// TopTracks retrieves the user's top tracks, returning the provider body untouched.
func (s *SpotifyService) TopTracks(ctx context.Context, accessToken string, query TopTracksQuery) (*APIResponse, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", shared.ErrNotAuthenticated)
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)
	header.Set("Accept", "application/json")

	resp, err := s.api.Get(ctx, topTracksPath, query.Values(), header)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, newUpstreamError(resp)
	}

	return resp, nil
}

func classifyExchangeError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: token endpoint unreachable: %v", shared.ErrServiceUnavailable, urlErr.Err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		reason := retrieveErr.ErrorCode
		if retrieveErr.ErrorDescription != "" {
			reason += ": " + retrieveErr.ErrorDescription
		}
		if reason == "" && retrieveErr.Response != nil {
			reason = retrieveErr.Response.Status
		}
		return fmt.Errorf("%w: %s", shared.ErrTokenExchange, reason)
	}

	return fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
}

// newUpstreamError decodes Spotify's regular error object, {"error": {"status": 401, "message": "..."}}.
func newUpstreamError(resp *APIResponse) *UpstreamError {
	upstream := &UpstreamError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		RetryAfter: resp.Headers.Get("Retry-After"),
	}

	var body struct {
		Error spotify.Error `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Error.Message != "" {
		upstream.Message = body.Error.Message
	}

	return upstream
}
