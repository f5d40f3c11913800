package handler

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"mingle/internal/httputil"
	"mingle/internal/model"
	"mingle/internal/service"
	"mingle/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

type uploadFn func(r *http.Request, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)

// handleUpload is the shared multipart flow for all image endpoints: bound
// the body, pull the "file" part, delegate to the service.
func (h *MediaHandler) handleUpload(w http.ResponseWriter, r *http.Request, upload uploadFn) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	// A little headroom over the image cap for multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxImageSizeBytes+1<<20)
	if err := r.ParseMultipartForm(model.MaxImageSizeBytes); err != nil {
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Upload exceeds 5MB limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	result, err := upload(r, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			log.Printf("[ERROR] Upload handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// UploadAvatar handles POST /media/avatar
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, func(r *http.Request, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
		return h.mediaService.UploadAvatar(r.Context(), file, header)
	})
}

// UploadCover handles POST /media/cover
func (h *MediaHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, func(r *http.Request, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
		return h.mediaService.UploadCover(r.Context(), file, header)
	})
}

// UploadPostImage handles POST /media/posts
func (h *MediaHandler) UploadPostImage(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, func(r *http.Request, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
		return h.mediaService.UploadPostImage(r.Context(), file, header)
	})
}
