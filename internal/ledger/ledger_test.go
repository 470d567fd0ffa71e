package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ideaboard/internal/apperrors"
	"ideaboard/internal/db"
	"ideaboard/internal/ledger"
)

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger_test.db")
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// One connection serializes concurrent writers on the pool, which is
	// how the embedded profile runs in production too.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	return ledger.New(conn, zap.NewNop())
}

func submitIdea(t *testing.T, l *ledger.Ledger) uint {
	t.Helper()
	id, err := l.SubmitIdea(context.Background(), "Fix the gym", "The gym floor needs resurfacing before winter.", "Alex", nil)
	require.NoError(t, err)
	return id
}

func TestSubmitIdeaValidation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.SubmitIdea(ctx, "ab", "short", "x", nil)
	assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)

	id, err := l.SubmitIdea(ctx, "Fix the gym", "The gym floor needs resurfacing before winter.", "Alex", nil)
	require.NoError(t, err)

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pending", idea.Status)
	assert.Equal(t, 0, idea.VoteCount)
	assert.Equal(t, "Alex", idea.Author)
}

func TestSubmitIdeaDefaultsAuthor(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	id, err := l.SubmitIdea(ctx, "Quiet study room", "Turn the old storage room into a quiet study space.", "", nil)
	require.NoError(t, err)

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultAuthor, idea.Author)
}

func TestCastVoteTwiceSequential(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := submitIdea(t, l)

	require.NoError(t, l.CastVote(ctx, id, "user:1"))

	err := l.CastVote(ctx, id, "user:1")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateVote)

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, idea.VoteCount, "cached counter must move exactly once")

	n, err := l.CountVotes(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "exactly one vote row must exist")
}

func TestCastVoteUnknownIdea(t *testing.T) {
	l := newTestLedger(t)

	err := l.CastVote(context.Background(), 9999, "user:1")
	assert.ErrorIs(t, err, apperrors.ErrIdeaNotFound)
}

func TestConcurrentVotesSameVoter(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := submitIdea(t, l)

	const n = 10
	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := l.CastVote(ctx, id, "user:42"); {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, apperrors.ErrDuplicateVote):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load(), "exactly one concurrent vote must win")
	assert.EqualValues(t, n-1, duplicates.Load())

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, idea.VoteCount, "counter incremented exactly once, not %d times", n)

	votes, err := l.CountVotes(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, votes)
}

func TestConcurrentVotesDistinctVoters(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := submitIdea(t, l)

	const n = 10
	var successes atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(voter int) {
			defer wg.Done()
			if err := l.CastVote(ctx, id, "user:"+string(rune('A'+voter))); err == nil {
				successes.Add(1)
			} else {
				t.Errorf("vote from distinct voter failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, n, successes.Load())

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, n, idea.VoteCount, "no increment may be lost under concurrent writers")

	votes, err := l.CountVotes(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, n, votes)
}

func TestAddComment(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := submitIdea(t, l)

	_, err := l.AddComment(ctx, 9999, "Sam", "great idea, fully support it", nil)
	assert.ErrorIs(t, err, apperrors.ErrIdeaNotFound, "valid text must not mask the missing idea")

	_, err = l.AddComment(ctx, id, "Sam", "x", nil)
	assert.True(t, apperrors.IsValidation(err))

	commentID, err := l.AddComment(ctx, id, "Sam", "great idea, fully support it", nil)
	require.NoError(t, err)
	assert.NotZero(t, commentID)

	comments, err := l.ListComments(ctx, id)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Sam", comments[0].Author)
}

func TestListCommentsUnknownIdea(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.ListComments(context.Background(), 9999)
	assert.ErrorIs(t, err, apperrors.ErrIdeaNotFound)
}

func TestDeleteIdeaCascades(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := submitIdea(t, l)

	require.NoError(t, l.CastVote(ctx, id, "user:1"))
	require.NoError(t, l.CastVote(ctx, id, "user:2"))
	_, err := l.AddComment(ctx, id, "Sam", "this would really help", nil)
	require.NoError(t, err)

	require.NoError(t, l.DeleteIdea(ctx, id))

	_, err = l.GetIdea(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrIdeaNotFound)

	votes, err := l.CountVotes(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, votes, "no vote rows may survive the cascade")

	comments, err := l.CountComments(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, comments, "no comment rows may survive the cascade")

	assert.ErrorIs(t, l.DeleteIdea(ctx, id), apperrors.ErrIdeaNotFound)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestModerateIdea(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := submitIdea(t, l)

	err := l.ModerateIdea(ctx, 9999, 1, strPtr("approved"), nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrIdeaNotFound)

	err = l.ModerateIdea(ctx, id, 1, strPtr("archived"), nil, nil)
	assert.True(t, apperrors.IsValidation(err), "unknown status must be rejected")

	require.NoError(t, l.ModerateIdea(ctx, id, 1, strPtr("approved"), strPtr("looks actionable"), boolPtr(true)))

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "approved", idea.Status)
	assert.Equal(t, "looks actionable", idea.ReviewNotes)
	assert.True(t, idea.IsFeatured)
	require.NotNil(t, idea.ReviewedBy)
	assert.EqualValues(t, 1, *idea.ReviewedBy)
	assert.NotNil(t, idea.ReviewedAt)

	// Repeating the identical verdict is a no-op in effect. reviewed_at is
	// refreshed each time; that overwrite is accepted behavior.
	require.NoError(t, l.ModerateIdea(ctx, id, 1, strPtr("approved"), strPtr("looks actionable"), boolPtr(true)))

	again, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, idea.Status, again.Status)
	assert.Equal(t, idea.ReviewNotes, again.ReviewNotes)
	assert.Equal(t, idea.IsFeatured, again.IsFeatured)
	assert.Equal(t, *idea.ReviewedBy, *again.ReviewedBy)
}

func TestModerateAllowsRegression(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := submitIdea(t, l)

	// The machine is permissive: completed may move back to pending.
	require.NoError(t, l.ModerateIdea(ctx, id, 1, strPtr("completed"), nil, nil))
	require.NoError(t, l.ModerateIdea(ctx, id, 1, strPtr("pending"), nil, nil))

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pending", idea.Status)
}

func TestListIdeasOrderingAndCounts(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	plain, err := l.SubmitIdea(ctx, "Plain idea", "An idea nobody has voted for yet today.", "A", nil)
	require.NoError(t, err)
	popular, err := l.SubmitIdea(ctx, "Popular idea", "An idea that gathers a couple of votes.", "B", nil)
	require.NoError(t, err)
	featured, err := l.SubmitIdea(ctx, "Featured idea", "An idea the moderators want on top.", "C", nil)
	require.NoError(t, err)

	require.NoError(t, l.CastVote(ctx, popular, "user:1"))
	require.NoError(t, l.CastVote(ctx, popular, "user:2"))
	_, err = l.AddComment(ctx, popular, "Sam", "strongly agree with this", nil)
	require.NoError(t, err)
	require.NoError(t, l.ModerateIdea(ctx, featured, 1, nil, nil, boolPtr(true)))

	views, err := l.ListIdeas(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, featured, views[0].ID, "featured ideas sort first")
	assert.Equal(t, popular, views[1].ID, "then by vote count")
	assert.Equal(t, plain, views[2].ID)

	assert.EqualValues(t, 2, views[1].VoteCount, "vote_count aggregates real vote rows")
	assert.EqualValues(t, 1, views[1].CommentCount)
	assert.Equal(t, 2, views[1].Votes, "cached counter agrees with the aggregate")
	assert.EqualValues(t, 0, views[2].VoteCount)
}

func TestSubmittedTextIsSanitized(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	id, err := l.SubmitIdea(ctx, "Fix <script>alert(1)</script> the gym", "The gym floor <img src=x onerror=alert(1)> needs resurfacing.", "Alex", nil)
	require.NoError(t, err)

	idea, err := l.GetIdea(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, idea.Title, "<script>")
	assert.NotContains(t, idea.Description, "onerror")
}
