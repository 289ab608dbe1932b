// package server contains the router, middleware and handlers of the Spotify relay
package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/insights/internal/services"
	"github.com/desertthunder/insights/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, request ids, CORS and panic recovery.
type Middleware func(http.Handler) http.Handler

// Route binds a single HTTP method and path to a handler.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Handler groups related routes so an implementation owns its route definitions.
type Handler interface {
	Routes() []Route // Routes returns the method, path and handler of every endpoint served
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options carries everything the relay needs. All fields are read once by [New].
type Options struct {
	Auth           services.Authenticator
	Tracks         services.TracksProvider
	FrontendOrigin string   // where the callback redirects with the access token
	AllowedOrigins []string // CORS allow-list; defaults to FrontendOrigin
	Logger         *log.Logger
}

// Server is the assembled relay: a [BasicRouter] with the middleware stack and every handler registered.
type Server struct {
	router *BasicRouter
	logger *log.Logger
}

var _ http.Handler = (*Server)(nil)

// New validates opts and wires the router.
func New(opts Options) (*Server, error) {
	if opts.Auth == nil {
		return nil, fmt.Errorf("%w: no authenticator", shared.ErrInvalidConfig)
	}
	if opts.Tracks == nil {
		return nil, fmt.Errorf("%w: no tracks provider", shared.ErrInvalidConfig)
	}
	if _, err := shared.ParseURL(opts.FrontendOrigin); err != nil {
		return nil, fmt.Errorf("%w: frontend origin: %v", shared.ErrInvalidConfig, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(os.Stderr)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{opts.FrontendOrigin}
	}

	router := NewBasicRouter()
	router.Use(
		Recover(logger),
		RequestID(),
		Logging(logger),
		CORS(NewAllowedOrigins(origins...)),
	)

	router.Handler(NewAuthHandler(opts.Auth, opts.FrontendOrigin, logger))
	router.Handler(NewProxyHandler(opts.Tracks, logger))
	router.Handler(NewStatusHandler())

	return &Server{router: router, logger: logger}, nil
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Routes lists the registered routes in registration order.
func (s *Server) Routes() []Route {
	return s.router.Routes()
}

// HTTPServer returns an [http.Server] for addr with header and idle timeouts set.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}
}
