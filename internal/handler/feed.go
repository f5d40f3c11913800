package handler

import (
	"log"
	"net/http"

	"mingle/internal/httputil"
	"mingle/internal/service"
	"mingle/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /feed
// Returns the authenticated user's personalized home feed.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	feed, err := h.feedService.GetFeed(r.Context(), userID, parseCursor(r), limit)
	if err != nil {
		log.Printf("[ERROR] Get feed handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}
