package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ideaboard/internal/ledger"
	"ideaboard/internal/middleware"
	"ideaboard/internal/utils"
)

const ideasCacheKey = "ideas:all"

// ideasCacheTTL bounds staleness of the public listing between mutations.
const ideasCacheTTL = time.Minute

type IdeaHandler struct {
	ledger *ledger.Ledger
	cache  *utils.TTLCache
	logger *zap.Logger
}

func NewIdeaHandler(l *ledger.Ledger, cache *utils.TTLCache, logger *zap.Logger) *IdeaHandler {
	return &IdeaHandler{ledger: l, cache: cache, logger: logger}
}

// List handles GET /api/ideas.
func (h *IdeaHandler) List(c *gin.Context) {
	if cached := h.cache.Get(ideasCacheKey); cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	ideas, err := h.ledger.ListIdeas(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list ideas", zap.Error(err))
		JSONError(c, err)
		return
	}

	h.cache.Set(ideasCacheKey, ideas, ideasCacheTTL)
	c.JSON(http.StatusOK, ideas)
}

type createIdeaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// Create handles POST /api/ideas. Anonymous submissions are allowed; a
// session user becomes the idea's owner and default author name.
func (h *IdeaHandler) Create(c *gin.Context) {
	var req createIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	var authorID *uint
	if user := middleware.CurrentUser(c); user != nil {
		authorID = &user.ID
		if req.Author == "" {
			req.Author = user.Username
		}
	}

	id, err := h.ledger.SubmitIdea(c.Request.Context(), req.Title, req.Description, req.Author, authorID)
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Delete(ideasCacheKey)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// Vote handles POST /api/ideas/:id/vote. The voter identity comes from the
// session when present, from the client address otherwise.
func (h *IdeaHandler) Vote(c *gin.Context) {
	ideaID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		BadRequest(c, "invalid idea id")
		return
	}

	voter := middleware.VoterIdentity(c)
	if err := h.ledger.CastVote(c.Request.Context(), ideaID, voter); err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Delete(ideasCacheKey)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Comments handles GET /api/ideas/:id/comments.
func (h *IdeaHandler) Comments(c *gin.Context) {
	ideaID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		BadRequest(c, "invalid idea id")
		return
	}

	comments, err := h.ledger.ListComments(c.Request.Context(), ideaID)
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

type createCommentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// CreateComment handles POST /api/ideas/:id/comments.
func (h *IdeaHandler) CreateComment(c *gin.Context) {
	ideaID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		BadRequest(c, "invalid idea id")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	var authorID *uint
	if user := middleware.CurrentUser(c); user != nil {
		authorID = &user.ID
		if req.Author == "" {
			req.Author = user.Username
		}
	}

	id, err := h.ledger.AddComment(c.Request.Context(), ideaID, req.Author, req.Text, authorID)
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Delete(ideasCacheKey)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
