package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ideaboard/internal/auth"
	"ideaboard/internal/ledger"
	"ideaboard/internal/middleware"
	"ideaboard/internal/utils"
)

// AdminHandler serves moderation and administration. Role gating happens in
// router middleware; by the time these run the actor is authorized.
type AdminHandler struct {
	ledger *ledger.Ledger
	auth   *auth.Service
	cache  *utils.TTLCache
	logger *zap.Logger
}

func NewAdminHandler(l *ledger.Ledger, a *auth.Service, cache *utils.TTLCache, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{ledger: l, auth: a, cache: cache, logger: logger}
}

type moderateRequest struct {
	Status      *string `json:"status"`
	ReviewNotes *string `json:"reviewNotes"`
	IsFeatured  *bool   `json:"isFeatured"`
}

// Moderate handles PUT /api/ideas/:id/moderate.
func (h *AdminHandler) Moderate(c *gin.Context) {
	ideaID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		BadRequest(c, "invalid idea id")
		return
	}

	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	reviewer := middleware.CurrentUser(c)
	err := h.ledger.ModerateIdea(c.Request.Context(), ideaID, reviewer.ID, req.Status, req.ReviewNotes, req.IsFeatured)
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Delete(ideasCacheKey)
	h.logger.Info("idea moderated",
		zap.Uint("idea_id", ideaID), zap.Uint("reviewer_id", reviewer.ID))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteIdea handles DELETE /api/ideas/:id, cascading to comments and votes.
func (h *AdminHandler) DeleteIdea(c *gin.Context) {
	ideaID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		BadRequest(c, "invalid idea id")
		return
	}

	if err := h.ledger.DeleteIdea(c.Request.Context(), ideaID); err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Delete(ideasCacheKey)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteComment handles DELETE /api/comments/:id.
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	commentID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		BadRequest(c, "invalid comment id")
		return
	}

	if err := h.ledger.DeleteComment(c.Request.Context(), commentID); err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Delete(ideasCacheKey)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PendingIdeas handles GET /api/moderation/ideas, the review queue.
func (h *AdminHandler) PendingIdeas(c *gin.Context) {
	ideas, err := h.ledger.PendingIdeas(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load moderation queue", zap.Error(err))
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, ideas)
}

// Stats handles GET /api/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.ledger.BoardStats(c.Request.Context())
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type createInvitationRequest struct {
	Role      string     `json:"role"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateInvitation handles POST /api/admin/invitations.
func (h *AdminHandler) CreateInvitation(c *gin.Context) {
	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	creator := middleware.CurrentUser(c)
	inv, err := h.auth.CreateInvitation(c.Request.Context(), creator.ID, req.Role, req.MaxUses, req.ExpiresAt)
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "code": inv.Code, "role": inv.Role, "max_uses": inv.MaxUses})
}
