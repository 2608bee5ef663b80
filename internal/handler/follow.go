package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"pinboard/internal/httputil"
	"pinboard/internal/model"
	"pinboard/internal/service"
	"pinboard/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Toggle follows or unfollows depending on current state
// POST /users/{id}/follow
func (h *FollowHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.followService.Toggle(r.Context(), followerID, followeeID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidOperation, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Follow toggle handler: %v", err)
			httputil.WriteInternalError(w, "Failed to toggle follow")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetFollowers lists users following the given user
// GET /users/{id}/followers
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.followPage(w, r, h.followService.GetFollowers)
}

// GetFollowing lists users the given user follows
// GET /users/{id}/following
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.followPage(w, r, h.followService.GetFollowing)
}

func (h *FollowHandler) followPage(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error),
) {
	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	var cursor *time.Time
	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		parsed, err := time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid cursor format")
			return
		}
		cursor = &parsed
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
		return
	}
	if limit == 0 {
		limit = 20
	}

	result, err := fetch(r.Context(), userID, cursor, limit, viewerID(r))
	if err != nil {
		log.Printf("[ERROR] Follow list handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch follow list")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
