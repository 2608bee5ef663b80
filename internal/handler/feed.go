package handler

import (
	"log"
	"net/http"

	"pinboard/internal/httputil"
	"pinboard/internal/service"
	"pinboard/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed returns the viewer's home feed, newest first
// GET /feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
		return
	}

	result, err := h.feedService.GetFeed(r.Context(), userID, parseCursor(r), limit)
	if err != nil {
		log.Printf("[ERROR] Feed handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
