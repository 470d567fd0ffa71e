// Package ledger owns Idea, Vote and Comment persistence. It is the one
// component where correctness is non-trivial: the vote-once-per-identity
// invariant is enforced by the storage layer's unique index, and the vote
// row plus the cached counter move together inside a single transaction.
package ledger

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ideaboard/internal/apperrors"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"
)

// DefaultAuthor is the display name used when the submitter leaves the
// author field blank.
const DefaultAuthor = "Anonymous"

// Ledger executes all mutations and derived reads over ideas, votes and
// comments against an injected database handle.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New constructs a Ledger. The handle's lifecycle belongs to the caller.
func New(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// IdeaView is the read shape of an idea: the record plus vote_count and
// comment_count aggregated from the real rows at read time, and the
// description rendered to sanitized HTML for the frontend.
type IdeaView struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"description_html"`
	Author          string     `json:"author"`
	AuthorID        *uint      `json:"author_id,omitempty"`
	Votes           int        `json:"votes"`
	Status          string     `json:"status"`
	IsFeatured      bool       `json:"is_featured"`
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes     string     `json:"review_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	VoteCount       int64      `json:"vote_count"`
	CommentCount    int64      `json:"comment_count"`
}

// Stats summarizes the whole board for the admin dashboard.
type Stats struct {
	Ideas    int64 `json:"ideas"`
	Comments int64 `json:"comments"`
	Votes    int64 `json:"votes"`
	Users    int64 `json:"users"`
}

// ListIdeas returns every idea, featured first, then by vote count and
// recency. Counts are aggregated from the vote and comment tables rather
// than trusting the cached counter alone.
func (l *Ledger) ListIdeas(ctx context.Context) ([]IdeaView, error) {
	var ideas []models.Idea
	if err := l.db.WithContext(ctx).
		Order("is_featured DESC, vote_count DESC, created_at DESC").
		Find(&ideas).Error; err != nil {
		return nil, err
	}
	return l.toViews(ctx, ideas)
}

// PendingIdeas returns the moderation queue, oldest first.
func (l *Ledger) PendingIdeas(ctx context.Context) ([]IdeaView, error) {
	var ideas []models.Idea
	if err := l.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Find(&ideas).Error; err != nil {
		return nil, err
	}
	return l.toViews(ctx, ideas)
}

// toViews annotates ideas with batch-aggregated vote and comment counts.
func (l *Ledger) toViews(ctx context.Context, ideas []models.Idea) ([]IdeaView, error) {
	views := make([]IdeaView, 0, len(ideas))
	if len(ideas) == 0 {
		return views, nil
	}

	ids := make([]uint, len(ideas))
	for i, idea := range ideas {
		ids[i] = idea.ID
	}

	voteCounts, err := l.countByIdea(ctx, &models.Vote{}, ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := l.countByIdea(ctx, &models.Comment{}, ids)
	if err != nil {
		return nil, err
	}

	for _, idea := range ideas {
		views = append(views, IdeaView{
			ID:              idea.ID,
			Title:           idea.Title,
			Description:     idea.Description,
			DescriptionHTML: utils.RenderMarkdown(idea.Description),
			Author:          idea.Author,
			AuthorID:        idea.AuthorID,
			Votes:           idea.VoteCount,
			Status:          idea.Status,
			IsFeatured:      idea.IsFeatured,
			ReviewedBy:      idea.ReviewedBy,
			ReviewedAt:      idea.ReviewedAt,
			ReviewNotes:     idea.ReviewNotes,
			CreatedAt:       idea.CreatedAt,
			VoteCount:       voteCounts[idea.ID],
			CommentCount:    commentCounts[idea.ID],
		})
	}
	return views, nil
}

// countByIdea runs one grouped COUNT over model for the given idea ids.
func (l *Ledger) countByIdea(ctx context.Context, model interface{}, ids []uint) (map[uint]int64, error) {
	type countRow struct {
		IdeaID uint
		Count  int64
	}
	var rows []countRow
	if err := l.db.WithContext(ctx).Model(model).
		Select("idea_id, COUNT(*) as count").
		Where("idea_id IN ?", ids).
		Group("idea_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.IdeaID] = r.Count
	}
	return counts, nil
}

// SubmitIdea validates and persists a new idea with status pending.
func (l *Ledger) SubmitIdea(ctx context.Context, title, description, author string, authorID *uint) (uint, error) {
	title = utils.StripHTML(title)
	description = utils.StripHTML(description)
	author = utils.StripHTML(author)

	if utf8.RuneCountInString(title) < 3 {
		return 0, apperrors.NewValidation("title", "title must be at least 3 characters")
	}
	if utf8.RuneCountInString(description) < 10 {
		return 0, apperrors.NewValidation("description", "description must be at least 10 characters")
	}
	if author == "" {
		author = DefaultAuthor
	}

	idea := models.Idea{
		Title:       title,
		Description: description,
		Author:      author,
		AuthorID:    authorID,
		Status:      models.StatusPending,
	}
	if err := l.db.WithContext(ctx).Create(&idea).Error; err != nil {
		return 0, err
	}
	return idea.ID, nil
}

// CastVote records one vote for (ideaID, voterID) and bumps the cached
// counter, all inside a single transaction.
//
// There is deliberately no read-for-existing-vote: two concurrent requests
// from the same identity would both pass such a check. The insert goes
// first and the unique index arbitrates; the loser gets ErrDuplicateVote
// and the counter is untouched. The increment itself is a relative UPDATE
// so concurrent distinct voters cannot lose each other's updates.
func (l *Ledger) CastVote(ctx context.Context, ideaID uint, voterID string) error {
	if voterID == "" {
		return apperrors.NewValidation("voter", "voter identity required")
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Idea{}).Where("id = ?", ideaID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return apperrors.ErrIdeaNotFound
		}

		vote := models.Vote{IdeaID: ideaID, VoterID: voterID}
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateVote
			}
			return err
		}

		return tx.Model(&models.Idea{}).Where("id = ?", ideaID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1)).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrIdeaNotFound), errors.Is(err, apperrors.ErrDuplicateVote):
		return err
	default:
		l.logger.Error("vote transaction rolled back",
			zap.Uint("idea_id", ideaID), zap.Error(err))
		return apperrors.NewTransaction("cast vote", err)
	}
}

// AddComment appends a comment to an existing idea. A single insert, so no
// transaction: the read-time comment count needs nothing kept in step.
func (l *Ledger) AddComment(ctx context.Context, ideaID uint, author, text string, authorID *uint) (uint, error) {
	text = utils.StripHTML(text)
	author = utils.StripHTML(author)

	if utf8.RuneCountInString(text) < 2 {
		return 0, apperrors.NewValidation("text", "comment must be at least 2 characters")
	}
	if author == "" {
		author = DefaultAuthor
	}

	var exists int64
	if err := l.db.WithContext(ctx).Model(&models.Idea{}).Where("id = ?", ideaID).Count(&exists).Error; err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, apperrors.ErrIdeaNotFound
	}

	comment := models.Comment{
		IdeaID:   ideaID,
		Author:   author,
		AuthorID: authorID,
		Text:     text,
	}
	if err := l.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return 0, err
	}
	return comment.ID, nil
}

// ListComments returns an idea's comments, oldest first.
func (l *Ledger) ListComments(ctx context.Context, ideaID uint) ([]models.Comment, error) {
	var exists int64
	if err := l.db.WithContext(ctx).Model(&models.Idea{}).Where("id = ?", ideaID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, apperrors.ErrIdeaNotFound
	}

	comments := make([]models.Comment, 0)
	if err := l.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ModerateIdea applies a review verdict. Any status may transition to any
// other; the machine is permissive on purpose. Repeating the same verdict
// is a no-op in effect, though it refreshes reviewed_at each time.
func (l *Ledger) ModerateIdea(ctx context.Context, ideaID, reviewerID uint, status, notes *string, featured *bool) error {
	if status != nil && !models.ValidStatus(*status) {
		return apperrors.NewValidation("status", "unknown status "+*status)
	}

	updates := map[string]interface{}{
		"reviewed_by": reviewerID,
		"reviewed_at": time.Now(),
	}
	if status != nil {
		updates["status"] = *status
	}
	if notes != nil {
		updates["review_notes"] = utils.StripHTML(*notes)
	}
	if featured != nil {
		updates["is_featured"] = *featured
	}

	res := l.db.WithContext(ctx).Model(&models.Idea{}).Where("id = ?", ideaID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrIdeaNotFound
	}
	return nil
}

// DeleteIdea removes an idea together with every comment and vote that
// references it, as one atomic unit. A partial cascade must never survive.
func (l *Ledger) DeleteIdea(ctx context.Context, ideaID uint) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Idea{}, ideaID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrIdeaNotFound
		}
		if err := tx.Where("idea_id = ?", ideaID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("idea_id = ?", ideaID).Delete(&models.Vote{}).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrIdeaNotFound):
		return err
	default:
		l.logger.Error("cascade delete rolled back",
			zap.Uint("idea_id", ideaID), zap.Error(err))
		return apperrors.NewTransaction("delete idea", err)
	}
}

// DeleteComment is the moderator-only escape hatch.
func (l *Ledger) DeleteComment(ctx context.Context, commentID uint) error {
	res := l.db.WithContext(ctx).Delete(&models.Comment{}, commentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// CountVotes counts the vote rows referencing an idea. Zero for unknown or
// deleted ideas.
func (l *Ledger) CountVotes(ctx context.Context, ideaID uint) (int64, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&models.Vote{}).Where("idea_id = ?", ideaID).Count(&n).Error
	return n, err
}

// CountComments counts the comment rows referencing an idea.
func (l *Ledger) CountComments(ctx context.Context, ideaID uint) (int64, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&models.Comment{}).Where("idea_id = ?", ideaID).Count(&n).Error
	return n, err
}

// GetIdea loads one idea record.
func (l *Ledger) GetIdea(ctx context.Context, ideaID uint) (*models.Idea, error) {
	var idea models.Idea
	if err := l.db.WithContext(ctx).First(&idea, ideaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIdeaNotFound
		}
		return nil, err
	}
	return &idea, nil
}

// BoardStats counts every entity for the admin dashboard.
func (l *Ledger) BoardStats(ctx context.Context) (Stats, error) {
	var s Stats
	tables := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Idea{}, &s.Ideas},
		{&models.Comment{}, &s.Comments},
		{&models.Vote{}, &s.Votes},
		{&models.User{}, &s.Users},
	}
	for _, t := range tables {
		if err := l.db.WithContext(ctx).Model(t.model).Count(t.dst).Error; err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}
