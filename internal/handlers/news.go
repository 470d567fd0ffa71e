package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ideaboard/internal/services"
)

type NewsHandler struct {
	fetcher *services.NewsFetcher
}

func NewNewsHandler(fetcher *services.NewsFetcher) *NewsHandler {
	return &NewsHandler{fetcher: fetcher}
}

// News handles GET /api/news. Scrape failures degrade to demo items, so
// this endpoint never errors.
func (h *NewsHandler) News(c *gin.Context) {
	items, live := h.fetcher.Fetch()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"count":     len(items),
		"news":      items,
		"cached":    !live,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
