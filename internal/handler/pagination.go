package handler

import (
	"net/http"
	"strconv"
)

// parseCursor returns the cursor query param, nil when absent.
func parseCursor(r *http.Request) *string {
	if c := r.URL.Query().Get("cursor"); c != "" {
		return &c
	}
	return nil
}

// maxRequestLimit rejects absurd limit values at the boundary; services still
// clamp to their own page caps below this.
const maxRequestLimit = 100

// parseLimit returns the limit query param, 0 when absent (services apply
// their defaults), and ok=false on a malformed or out-of-range value.
func parseLimit(r *http.Request) (int, bool) {
	l := r.URL.Query().Get("limit")
	if l == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(l)
	if err != nil || parsed <= 0 || parsed > maxRequestLimit {
		return 0, false
	}
	return parsed, true
}
