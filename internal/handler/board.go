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

type BoardHandler struct {
	boardService *service.BoardService
}

func NewBoardHandler(boardService *service.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// Create creates a new board
// POST /boards
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	board, err := h.boardService.Create(r.Context(), userID, req)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			httputil.WriteValidationError(w, vErr.Fields)
			return
		}
		log.Printf("[ERROR] Create board handler: %v", err)
		httputil.WriteInternalError(w, "Failed to create board")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, board)
}

// Get returns a board with its pins
// GET /boards/{id}
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	boardID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid board ID")
		return
	}

	board, err := h.boardService.Get(r.Context(), boardID, viewerID(r))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrBoardNotFound):
			httputil.WriteNotFound(w, "Board not found")
		case errors.Is(err, model.ErrBoardSecret):
			httputil.WriteForbidden(w, "This board is secret")
		default:
			log.Printf("[ERROR] Get board handler: %v", err)
			httputil.WriteInternalError(w, "Failed to get board")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, board)
}

// Update edits a board (owner only)
// PATCH /boards/{id}
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	boardID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid board ID")
		return
	}

	var req model.UpdateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	board, err := h.boardService.Update(r.Context(), boardID, userID, req)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteValidationError(w, vErr.Fields)
		case errors.Is(err, model.ErrBoardNotFound):
			httputil.WriteNotFound(w, "Board not found")
		case errors.Is(err, model.ErrNotBoardOwner):
			httputil.WriteForbidden(w, "Only the board owner may edit it")
		default:
			log.Printf("[ERROR] Update board handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update board")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, board)
}

// Delete removes a board (owner only); the pins on it stay saved
// DELETE /boards/{id}
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	boardID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid board ID")
		return
	}

	if err := h.boardService.Delete(r.Context(), boardID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrBoardNotFound):
			httputil.WriteNotFound(w, "Board not found")
		case errors.Is(err, model.ErrNotBoardOwner):
			httputil.WriteForbidden(w, "Only the board owner may delete it")
		default:
			log.Printf("[ERROR] Delete board handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete board")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Board deleted",
	})
}

// GetUserBoards lists a user's boards visible to the viewer
// GET /users/{id}/boards
func (h *BoardHandler) GetUserBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	boards, err := h.boardService.GetByUser(r.Context(), userID, viewerID(r))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get user boards handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch boards")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"boards": boards,
	})
}
