package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mingle/internal/httputil"
	"mingle/internal/model"
	"mingle/internal/service"
	"mingle/internal/transport/http/middleware"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateProfile handles POST /users
// Provisions the caller's profile at first sign-in. The uid comes from the
// validated token, so a client cannot create a profile for someone else.
func (h *UserHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	req.UID = userID

	user, err := h.userService.CreateProfile(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDisplayNameRequired):
			httputil.WriteBadRequest(w, "Display name is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Display name too long")
		case errors.Is(err, model.ErrProfileExists):
			httputil.WriteConflict(w, "Profile already exists")
		default:
			log.Printf("[ERROR] Create profile handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// GetProfile handles GET /users/{uid}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.userService.GetProfile(r.Context(), uid, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get profile handler: uid=%s err=%v", uid, err)
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDisplayNameRequired):
			httputil.WriteBadRequest(w, "Display name cannot be empty")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Field too long")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Update profile handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// Search handles GET /users/search?q=term
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	results, err := h.userService.Search(r.Context(), term, parseCursor(r), limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Search handler: q=%q err=%v", term, err)
		httputil.WriteInternalError(w, "Failed to search users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, results)
}
