package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pinboard/internal/transport/http/middleware"
)

// parseIDParam reads a numeric URL parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// viewerID returns the authenticated user's ID if present, for endpoints
// behind optional auth.
func viewerID(r *http.Request) *int64 {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}

// parseLimit reads the limit query parameter, 0 meaning "use default".
func parseLimit(r *http.Request) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 100 {
		return 0, false
	}
	return limit, true
}

// parseCursor reads the cursor query parameter.
func parseCursor(r *http.Request) *string {
	if c := r.URL.Query().Get("cursor"); c != "" {
		return &c
	}
	return nil
}
