package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/insights/internal/services"
	"github.com/desertthunder/insights/internal/shared"
)

// ProxyHandler forwards the caller's bearer token to the provider and relays the answer.
type ProxyHandler struct {
	tracks services.TracksProvider
	logger *log.Logger
}

// NewProxyHandler creates a [ProxyHandler].
func NewProxyHandler(tracks services.TracksProvider, logger *log.Logger) *ProxyHandler {
	return &ProxyHandler{tracks: tracks, logger: shared.WithLogger(logger, "handler", "proxy")}
}

func (h *ProxyHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: RouteTopTracks, Handler: http.HandlerFunc(h.TopTracks)},
	}
}

// TopTracks relays GET /me/top/tracks. A provider 2xx body is written unchanged.
func (h *ProxyHandler) TopTracks(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	query, err := parseTopTracksQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.tracks.TopTracks(r.Context(), token, query)
	if err != nil {
		h.writeUpstreamError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

func (h *ProxyHandler) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestIDFromContext(r.Context())

	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		h.logger.Warn("spotify rejected request", "status", upstream.StatusCode, "message", upstream.Message, "request_id", requestID)

		switch upstream.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			if upstream.RetryAfter != "" {
				w.Header().Set("Retry-After", upstream.RetryAfter)
			}
			writeError(w, upstream.StatusCode, upstream.Message)
		default:
			writeError(w, http.StatusBadGateway, "Spotify API error: "+upstream.Message)
		}
		return
	}

	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "No token provided")
	case errors.Is(err, shared.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("spotify request failed", "err", err, "request_id", requestID)
		writeError(w, http.StatusBadGateway, "Failed to fetch top tracks")
	}
}

// BearerToken extracts the token from an Authorization header value.
//
// Both "Bearer <token>" and a bare "<token>" are accepted; a blank value or a lone scheme yields "".
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	scheme, rest, found := strings.Cut(header, " ")
	if strings.EqualFold(scheme, "Bearer") {
		if !found {
			return ""
		}
		return strings.TrimSpace(rest)
	}

	return header
}

// parseTopTracksQuery applies optional limit, offset and time_range overrides to the defaults.
func parseTopTracksQuery(values url.Values) (services.TopTracksQuery, error) {
	query := services.DefaultTopTracksQuery()

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("%w: limit must be an integer", shared.ErrInvalidArgument)
		}
		query.Limit = n
	}

	if raw := values.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("%w: offset must be an integer", shared.ErrInvalidArgument)
		}
		query.Offset = n
	}

	if raw := values.Get("time_range"); raw != "" {
		query.TimeRange = services.TimeRange(raw)
	}

	return query, query.Validate()
}
