package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ideaboard/internal/apperrors"
)

// JSONError translates the error taxonomy into a status code and an
// {"error": message} body. Every handler funnels failures through here so
// the mapping lives in exactly one place.
func JSONError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicateVote):
		c.JSON(http.StatusBadRequest, gin.H{"error": "you have already voted for this idea"})
	case errors.Is(err, apperrors.ErrIdeaNotFound),
		errors.Is(err, apperrors.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidInvitation),
		errors.Is(err, apperrors.ErrInvalidVerification):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		// TransactionError and anything unclassified. The transaction has
		// already rolled back; nothing partial was persisted.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// BadRequest reports a malformed body or path parameter.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
