package handler

import (
	"errors"
	"log"
	"net/http"

	"pinboard/internal/httputil"
	"pinboard/internal/model"
	"pinboard/internal/service"
	"pinboard/internal/transport/http/middleware"
)

// maxUploadMemory caps the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadAvatar accepts a profile image, normalizes it and stores it
// POST /media/avatar
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		writeUploadError(w, err, "Failed to upload avatar")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

// UploadPinFile accepts pin media and stores it unmodified
// POST /media/pin
func (h *MediaHandler) UploadPinFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.mediaService.UploadPinFile(r.Context(), file, header)
	if err != nil {
		writeUploadError(w, err, "Failed to upload file")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

func writeUploadError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, model.CodeFileTooLarge, "File exceeds the size limit")
	case errors.Is(err, model.ErrInvalidFileType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidFileType, "Unsupported file type")
	default:
		log.Printf("[ERROR] Media upload: %v", err)
		httputil.WriteInternalError(w, fallback)
	}
}
