package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pinboard/internal/httputil"
	"pinboard/internal/model"
	"pinboard/internal/service"
	"pinboard/internal/transport/http/middleware"
)

type PinHandler struct {
	pinService *service.PinService
}

func NewPinHandler(pinService *service.PinService) *PinHandler {
	return &PinHandler{pinService: pinService}
}

// Create creates a new pin from previously uploaded media
// POST /pins
func (h *PinHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	pin, err := h.pinService.Create(r.Context(), userID, req)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			httputil.WriteValidationError(w, vErr.Fields)
			return
		}
		log.Printf("[ERROR] Create pin handler: %v", err)
		httputil.WriteInternalError(w, "Failed to create pin")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, pin)
}

// GetByID returns a single pin
// GET /pins/{id}
func (h *PinHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	pinID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pin ID")
		return
	}

	pin, err := h.pinService.GetByID(r.Context(), pinID, viewerID(r))
	if err != nil {
		if errors.Is(err, model.ErrPinNotFound) {
			httputil.WriteNotFound(w, "Pin not found")
			return
		}
		log.Printf("[ERROR] Get pin handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get pin")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pin)
}

// Update edits pin metadata (owner only)
// PATCH /pins/{id}
func (h *PinHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	pinID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pin ID")
		return
	}

	var req model.UpdatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	pin, err := h.pinService.Update(r.Context(), pinID, userID, req)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteValidationError(w, vErr.Fields)
		case errors.Is(err, model.ErrPinNotFound):
			httputil.WriteNotFound(w, "Pin not found")
		case errors.Is(err, model.ErrNotPinOwner):
			httputil.WriteForbidden(w, "Only the pin owner may edit it")
		default:
			log.Printf("[ERROR] Update pin handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update pin")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pin)
}

// Delete removes a pin (owner only)
// DELETE /pins/{id}
func (h *PinHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	pinID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pin ID")
		return
	}

	if err := h.pinService.Delete(r.Context(), pinID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrPinNotFound):
			httputil.WriteNotFound(w, "Pin not found")
		case errors.Is(err, model.ErrNotPinOwner):
			httputil.WriteForbidden(w, "Only the pin owner may delete it")
		default:
			log.Printf("[ERROR] Delete pin handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete pin")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Pin deleted",
	})
}

// ToggleLike flips the viewer's like on a pin
// POST /pins/{id}/like
func (h *PinHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	pinID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pin ID")
		return
	}

	result, err := h.pinService.ToggleLike(r.Context(), pinID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPinNotFound) {
			httputil.WriteNotFound(w, "Pin not found")
			return
		}
		log.Printf("[ERROR] Like toggle handler: %v", err)
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Save files the pin under the viewer's saved pins
// POST /pins/{id}/save
func (h *PinHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	pinID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pin ID")
		return
	}

	// The body is optional; absent means "save without a board"
	var req model.SavePinRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.pinService.Save(r.Context(), pinID, userID, req.BoardID); err != nil {
		switch {
		case errors.Is(err, model.ErrPinNotFound):
			httputil.WriteNotFound(w, "Pin not found")
		case errors.Is(err, model.ErrAlreadySaved):
			httputil.WriteConflict(w, "Pin already saved")
		case errors.Is(err, model.ErrBoardNotUsable):
			httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidOperation, err.Error())
		default:
			log.Printf("[ERROR] Save pin handler: %v", err)
			httputil.WriteInternalError(w, "Failed to save pin")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Pin saved",
	})
}

// GetUserCreated lists pins created by a user
// GET /users/{id}/pins
func (h *PinHandler) GetUserCreated(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
		return
	}

	result, err := h.pinService.GetCreatedByUser(r.Context(), userID, parseCursor(r), limit, viewerID(r))
	if err != nil {
		log.Printf("[ERROR] Get created pins handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch pins")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetUserSaved lists pins saved by a user
// GET /users/{id}/saved
func (h *PinHandler) GetUserSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
		return
	}

	result, err := h.pinService.GetSavedByUser(r.Context(), userID, parseCursor(r), limit, viewerID(r))
	if err != nil {
		log.Printf("[ERROR] Get saved pins handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch saved pins")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
