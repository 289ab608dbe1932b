// Package server provides the HTTP surface of the Spotify relay: routing, middleware and handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// The method check sits inside the middleware chain so CORS preflight requests are answered first,
// and unmatched paths get a JSON 404 after passing through the same middleware.
//
// # Middleware
//
// [New] installs, outermost first:
//   - [Recover]: panics become 500 {"error"}
//   - [RequestID]: X-Request-ID on every response and in the request context
//   - [Logging]: one structured line per request
//   - [CORS]: an explicit [AllowedOrigins] list
//
// # Handlers
//
// Handlers implement the [Handler] interface and own their route definitions:
//   - [AuthHandler]: GET /api/auth/login and GET /api/auth/callback
//   - [ProxyHandler]: GET /api/user/top-tracks
//   - [StatusHandler]: GET /api/test
//
// The relay keeps no session state. The access token is handed to the front-end in the callback redirect
// and comes back on each proxied request in the Authorization header.
//
// # Errors
//
// Every error response is JSON of the form {"error": "<message>"}.
package server
