package server

const (
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthCallback = "/api/auth/callback"
	RouteTopTracks    = "/api/user/top-tracks"
	RouteTest         = "/api/test"
)
