package server

import "net/http"

// StatusHandler serves the smoke test route.
type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

func (h *StatusHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: RouteTest, Handler: http.HandlerFunc(h.Test)},
	}
}

// Test always answers 200 {"message": "API is working!"}.
func (h *StatusHandler) Test(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API is working!"})
}
