package service

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCommentRepo is an in-memory CommentRepository for service tests.
type stubCommentRepo struct {
	comments    []*models.Comment
	createCalls int
}

func (s *stubCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	s.createCalls++
	comment.ID = uint(len(s.comments) + 1)
	s.comments = append(s.comments, comment)
	return nil
}

func (s *stubCommentRepo) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	for _, c := range s.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.NewNotFoundError("Comment", id)
}

func (s *stubCommentRepo) ListByPost(_ context.Context, postID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestCommentService_CreateValidates(t *testing.T) {
	posts := &stubPostRepo{posts: []*models.Post{{ID: 1, UserID: 1}}}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	comments := &stubCommentRepo{}
	svc := NewCommentService(comments, posts, users)

	ctx := context.Background()

	_, err := svc.CreateComment(ctx, 1, 1, "   ")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Zero(t, comments.createCalls)

	// Commenting on a missing post is NOT_FOUND, not a silent insert.
	_, err = svc.CreateComment(ctx, 1, 99, "hello")
	require.Error(t, err)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCommentService_CreateReturnsAuthor(t *testing.T) {
	posts := &stubPostRepo{posts: []*models.Post{{ID: 1, UserID: 2}}}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := NewCommentService(&stubCommentRepo{}, posts, users)

	comment, err := svc.CreateComment(context.Background(), 1, 1, "  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", comment.Content)
	require.NotNil(t, comment.Author)
	assert.Equal(t, "alice", comment.Author.Username)
}

func TestCommentService_ListMergesAuthors(t *testing.T) {
	posts := &stubPostRepo{posts: []*models.Post{{ID: 1, UserID: 1}}}
	users := &stubUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
	}}
	comments := &stubCommentRepo{comments: []*models.Comment{
		{ID: 1, PostID: 1, UserID: 2, Content: "from bob"},
		{ID: 2, PostID: 1, UserID: 1, Content: "from alice"},
		{ID: 3, PostID: 2, UserID: 1, Content: "other thread"},
	}}
	svc := NewCommentService(comments, posts, users)

	listed, err := svc.ListComments(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, c := range listed {
		require.NotNil(t, c.Author)
		assert.Equal(t, c.UserID, c.Author.ID)
	}
}

func TestCommentService_ListEmptyThread(t *testing.T) {
	posts := &stubPostRepo{posts: []*models.Post{{ID: 1, UserID: 1}}}
	svc := NewCommentService(&stubCommentRepo{}, posts, &stubUserRepo{})

	listed, err := svc.ListComments(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}
