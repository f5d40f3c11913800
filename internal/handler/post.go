package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mingle/internal/httputil"
	"mingle/internal/model"
	"mingle/internal/service"
	"mingle/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Post content or image is required")
		case errors.Is(err, model.ErrCaptionTooLong):
			httputil.WriteBadRequest(w, "Content too long (max 2200 characters)")
		case errors.Is(err, model.ErrTooManyTags):
			httputil.WriteBadRequest(w, "Too many tags (max 10)")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		default:
			log.Printf("[ERROR] Create post handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GetByID handles GET /posts/{id}
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var viewerID *string
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &uid
	}

	post, err := h.postService.GetByID(r.Context(), postID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post handler: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// GetGlobalFeed handles GET /posts
func (h *PostHandler) GetGlobalFeed(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	var viewerID *string
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &uid
	}

	posts, err := h.postService.GetGlobalFeed(r.Context(), parseCursor(r), limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Get global feed handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to get posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// GetUserPosts handles GET /users/{uid}/posts
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "uid")
	if authorID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	var viewerID *string
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &uid
	}

	posts, err := h.postService.GetUserPosts(r.Context(), authorID, parseCursor(r), limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Get user posts handler: user=%s err=%v", authorID, err)
		httputil.WriteInternalError(w, "Failed to get user posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// Delete handles DELETE /posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	err = h.postService.Delete(r.Context(), postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only delete your own posts")
		default:
			log.Printf("[ERROR] Delete post handler: user=%s post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

// ToggleLike handles POST /posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] Toggle like handler: user=%s post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to toggle like")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
