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

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create posts a top-level comment on a pin
// POST /pins/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), pinID, userID, req)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteValidationError(w, vErr.Fields)
		case errors.Is(err, model.ErrPinNotFound):
			httputil.WriteNotFound(w, "Pin not found")
		default:
			log.Printf("[ERROR] Create comment handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Reply posts a reply under an existing comment
// POST /pins/{id}/comments/{commentId}/replies
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
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

	parentID, ok := parseIDParam(r, "commentId")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Reply(r.Context(), pinID, parentID, userID, req)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteValidationError(w, vErr.Fields)
		case errors.Is(err, model.ErrPinNotFound):
			httputil.WriteNotFound(w, "Pin not found")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrCommentWrongPin):
			httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidOperation, "Comment does not belong to this pin")
		default:
			log.Printf("[ERROR] Reply handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create reply")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Update edits a comment's text (author only)
// PATCH /comments/{id}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Update(r.Context(), commentID, userID, req)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteValidationError(w, vErr.Fields)
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrNotCommentOwner):
			httputil.WriteForbidden(w, "Only the comment author may edit it")
		default:
			log.Printf("[ERROR] Update comment handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Delete removes a comment along with its replies (author only)
// DELETE /comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	if err := h.commentService.Delete(r.Context(), commentID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrNotCommentOwner):
			httputil.WriteForbidden(w, "Only the comment author may delete it")
		default:
			log.Printf("[ERROR] Delete comment handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Comment deleted",
	})
}

// GetByPin lists a pin's top-level comments with their replies
// GET /pins/{id}/comments
func (h *CommentHandler) GetByPin(w http.ResponseWriter, r *http.Request) {
	pinID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pin ID")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
		return
	}

	result, err := h.commentService.GetByPinID(r.Context(), pinID, parseCursor(r), limit)
	if err != nil {
		if errors.Is(err, model.ErrPinNotFound) {
			httputil.WriteNotFound(w, "Pin not found")
			return
		}
		log.Printf("[ERROR] Get comments handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ToggleLike flips the viewer's like on a comment
// POST /comments/{id}/like
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	result, err := h.commentService.ToggleLike(r.Context(), commentID, userID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] Comment like handler: %v", err)
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
