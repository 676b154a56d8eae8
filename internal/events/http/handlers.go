package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mfahadasghar/flow-fund/internal/events"
	"github.com/mfahadasghar/flow-fund/internal/events/repository"
)

const defaultLimit = 50

type Handler struct {
	feed      *repository.Feed
	publisher *events.Publisher
}

// Register mounts the event feed, the replay surface for indexers and
// the UI.
func Register(rg *gin.RouterGroup, feed *repository.Feed, publisher *events.Publisher) {
	h := &Handler{feed: feed, publisher: publisher}

	rg.GET("/events", h.list)
	rg.GET("/events/live", h.live)
	rg.GET("/events/donation/:id", h.byDonation)
}

func (h *Handler) list(c *gin.Context) {
	limit := queryLimit(c)

	kind := c.Query("kind")
	var (
		items any
		err   error
	)
	if kind != "" {
		items, err = h.feed.ByKind(c.Request.Context(), kind, limit)
	} else {
		items, err = h.feed.Recent(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "events": items})
}

func (h *Handler) byDonation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid donation id"})
		return
	}
	items, err := h.feed.ByDonation(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "events": items})
}

// live serves the redis-cached tail for clients polling for fresh
// activity without hitting Postgres.
func (h *Handler) live(c *gin.Context) {
	items, err := h.publisher.RecentCached(c.Request.Context(), queryLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "events": items})
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	return limit
}
