package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mingle/internal/httputil"
	"mingle/internal/model"
	"mingle/internal/service"
	"mingle/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

// Follow handles POST /users/{uid}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID := chi.URLParam(r, "uid")
	if followeeID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	err := h.followService.Follow(r.Context(), followerID, followeeID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot follow yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Follow handler: follower=%s followee=%s err=%v", followerID, followeeID, err)
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Followed successfully",
	})
}

// Unfollow handles DELETE /users/{uid}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID := chi.URLParam(r, "uid")
	if followeeID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followeeID); err != nil {
		log.Printf("[ERROR] Unfollow handler: follower=%s followee=%s err=%v", followerID, followeeID, err)
		httputil.WriteInternalError(w, "Failed to unfollow user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Unfollowed successfully",
	})
}

// GetFollowers handles GET /users/{uid}/followers
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	followers, err := h.followService.GetFollowers(r.Context(), uid, parseCursor(r), limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Get followers handler: uid=%s err=%v", uid, err)
		httputil.WriteInternalError(w, "Failed to get followers")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, followers)
}

// GetFollowing handles GET /users/{uid}/following
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	following, err := h.followService.GetFollowing(r.Context(), uid, parseCursor(r), limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Get following handler: uid=%s err=%v", uid, err)
		httputil.WriteInternalError(w, "Failed to get following")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, following)
}
