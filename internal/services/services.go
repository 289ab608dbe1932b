package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/insights/internal/shared"
	"golang.org/x/oauth2"
)

// Authenticator issues provider authorization URLs and trades authorization codes for access tokens.
type Authenticator interface {
	// AuthURL returns the consent screen URL. The state value is echoed back on callback.
	AuthURL(state string) string

	// Exchange trades a single-use authorization code for an access token.
	// The result must be checked with [ExchangeResult.Error] before the token is used.
	Exchange(ctx context.Context, code string) ExchangeResult
}

// TracksProvider fetches the authenticated user's top tracks from the provider.
type TracksProvider interface {
	// TopTracks calls the provider with the caller's access token.
	// On a non-2xx provider response the raw response is returned alongside an [*UpstreamError].
	TopTracks(ctx context.Context, accessToken string, query TopTracksQuery) (*APIResponse, error)
}

// TimeRange is the affinity window Spotify computes top items over.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // ~4 weeks
	MediumTerm TimeRange = "medium_term" // ~6 months
	LongTerm   TimeRange = "long_term"   // ~1 year
)

const (
	defaultTopTracksLimit = 20
	maxTopTracksLimit     = 50
)

// TopTracksQuery holds the paging and window parameters of a top tracks request.
type TopTracksQuery struct {
	Limit     int
	Offset    int
	TimeRange TimeRange
}

// DefaultTopTracksQuery returns limit 20, offset 0 over the medium term window.
func DefaultTopTracksQuery() TopTracksQuery {
	return TopTracksQuery{Limit: defaultTopTracksLimit, Offset: 0, TimeRange: MediumTerm}
}

// Validate checks the query against the bounds Spotify accepts.
func (q TopTracksQuery) Validate() error {
	if q.Limit < 1 || q.Limit > maxTopTracksLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", shared.ErrInvalidArgument, maxTopTracksLimit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", shared.ErrInvalidArgument)
	}
	switch q.TimeRange {
	case ShortTerm, MediumTerm, LongTerm:
	default:
		return fmt.Errorf("%w: time_range must be one of short_term, medium_term, long_term", shared.ErrInvalidArgument)
	}
	return nil
}

// Values encodes the query as URL parameters.
func (q TopTracksQuery) Values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	v.Set("time_range", string(q.TimeRange))
	return v
}

// ExchangeResult contains the outcome of an authorization code exchange.
type ExchangeResult struct {
	Token *oauth2.Token
	err   error
}

// NewExchangeResult builds a result, treating a missing or empty access token as a failed exchange.
func NewExchangeResult(token *oauth2.Token, err error) ExchangeResult {
	if err != nil {
		return ExchangeResult{err: err}
	}
	if token == nil || token.AccessToken == "" {
		return ExchangeResult{err: fmt.Errorf("%w: provider returned no access token", shared.ErrTokenExchange)}
	}
	return ExchangeResult{Token: token}
}

func (r ExchangeResult) Error() error {
	return r.err
}

// AccessToken returns the token string, or "" when the exchange failed.
func (r ExchangeResult) AccessToken() string {
	if r.err != nil || r.Token == nil {
		return ""
	}
	return r.Token.AccessToken
}

// UpstreamError describes a non-2xx response from the provider API.
type UpstreamError struct {
	StatusCode int
	Message    string
	RetryAfter string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%v: spotify status %d: %s", shared.ErrAPIRequest, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return shared.ErrAPIRequest
}
