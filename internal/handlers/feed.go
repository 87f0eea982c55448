package handlers

import (
	"net/http"

	apperrors "github.com/connectos/backend/internal/errors"
	"github.com/connectos/backend/internal/feed"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetFeed returns the viewer's ranked, filtered, paginated feed.
// GET /api/v1/feed?q=&sort=&page=&page_size=&refresh=
func (h *Handlers) GetFeed(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	query := c.Query("q")
	sortMode := feed.ParseSortMode(c.Query("sort"))
	page := util.ParsePositiveInt(c.Query("page"), 1)
	pageSize := util.ParsePositiveInt(c.Query("page_size"), feed.DefaultPageSize)
	forceRefresh := util.ParseBool(c.Query("refresh"))

	ctx, span := h.events.TraceFeedResolve(c.Request.Context(), viewerID, forceRefresh)
	result, err := h.feed.GetFeed(ctx, viewerID, forceRefresh)
	if err != nil && len(result.Entries) == 0 {
		span.End()
		util.RespondError(c, err)
		return
	}
	h.events.RecordFeedResolved(span, len(result.Entries), !forceRefresh && err == nil, result.Stale)
	span.End()

	ordered := feed.SortAndFilter(result.Entries, query, sortMode)
	pageEntries, currentPage, totalPages := feed.Paginate(ordered, page, pageSize)

	resp := gin.H{
		"entries":     pageEntries,
		"page":        currentPage,
		"page_size":   pageSize,
		"total_pages": totalPages,
		"total":       len(ordered),
		"sort":        string(sortMode),
		"stale":       result.Stale,
	}
	// A stale feed means the refresh behind it failed; the viewer gets the
	// last good data plus the failure that made it stale.
	if result.Stale && err != nil {
		apiErr, ok := err.(*apperrors.APIError)
		if !ok {
			apiErr = apperrors.FeedFetchFailed(err)
		}
		resp["error"] = gin.H{"code": apiErr.Code, "message": apiErr.Message}
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshFeed drops the viewer's cached feed and re-resolves immediately.
// POST /api/v1/feed/refresh
func (h *Handlers) RefreshFeed(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.feed.Refresh(c.Request.Context(), viewerID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": result.Entries,
		"total":   len(result.Entries),
	})
}
