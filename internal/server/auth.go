package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/insights/internal/services"
	"github.com/desertthunder/insights/internal/shared"
)

// LoginResponse is the body of GET /api/auth/login.
type LoginResponse struct {
	AuthURL string `json:"auth_url"`
}

// AuthHandler serves the login URL and the OAuth2 authorization code callback.
//
// It is stateless: the state value sent to the provider is random and not checked on callback.
type AuthHandler struct {
	auth           services.Authenticator
	frontendOrigin string
	logger         *log.Logger
	newState       func() string
}

// NewAuthHandler creates an [AuthHandler] redirecting to frontendOrigin after a successful exchange.
func NewAuthHandler(auth services.Authenticator, frontendOrigin string, logger *log.Logger) *AuthHandler {
	return &AuthHandler{
		auth:           auth,
		frontendOrigin: frontendOrigin,
		logger:         shared.WithLogger(logger, "handler", "auth"),
		newState:       shared.GenerateID,
	}
}

func (h *AuthHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: RouteAuthLogin, Handler: http.HandlerFunc(h.Login)},
		{Method: http.MethodGet, Path: RouteAuthCallback, Handler: http.HandlerFunc(h.Callback)},
	}
}

// Login returns the provider consent URL.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LoginResponse{AuthURL: h.auth.AuthURL(h.newState())})
}

// Callback exchanges the authorization code and redirects the browser to the front-end with the access token.
//
// Any failure ends in an error status; the browser is never redirected without a token.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requestID := RequestIDFromContext(r.Context())

	if providerErr := q.Get("error"); providerErr != "" {
		err := fmt.Errorf("%w: %s", shared.ErrAuthDenied, providerErr)
		h.logger.Warn("callback rejected", "err", err, "request_id", requestID)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "No authorization code provided")
		return
	}

	result := h.auth.Exchange(r.Context(), code)
	if err := result.Error(); err != nil {
		h.logger.Error("token exchange failed", "err", err, "request_id", requestID)

		if errors.Is(err, shared.ErrServiceUnavailable) {
			writeError(w, http.StatusBadGateway, "Spotify accounts service unavailable")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to exchange authorization code")
		return
	}

	token := result.AccessToken()
	if token == "" {
		h.logger.Error("token exchange returned no access token", "request_id", requestID)
		writeError(w, http.StatusBadRequest, "Failed to exchange authorization code")
		return
	}

	http.Redirect(w, r, FrontendRedirectURL(h.frontendOrigin, token), http.StatusFound)
}

// FrontendRedirectURL builds <origin>/?access_token=<token> with the token query-escaped.
func FrontendRedirectURL(origin, token string) string {
	return strings.TrimSuffix(origin, "/") + "/?" + url.Values{"access_token": {token}}.Encode()
}
