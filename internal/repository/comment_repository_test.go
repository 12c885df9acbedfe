package repository

import (
	"context"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateBumpsCounter(t *testing.T) {
	db := setupRepoTestDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)

	author := createTestUser(t, db, "author")
	replier := createTestUser(t, db, "replier")
	post := createTestPost(t, db, author.ID, "discuss", time.Now())

	ctx := context.Background()
	require.NoError(t, comments.Create(ctx, &models.Comment{
		UserID: replier.ID, PostID: post.ID, Content: "first",
	}))
	require.NoError(t, comments.Create(ctx, &models.Comment{
		UserID: author.ID, PostID: post.ID, Content: "second",
	}))

	reloaded, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.CommentsCount)
}

func TestCommentRepository_ListByPostOldestFirst(t *testing.T) {
	db := setupRepoTestDB(t)
	comments := NewCommentRepository(db)

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author.ID, "thread", time.Now())
	other := createTestPost(t, db, author.ID, "other thread", time.Now())

	base := time.Now().Add(-time.Hour)
	first := &models.Comment{UserID: author.ID, PostID: post.ID, Content: "first", CreatedAt: base}
	second := &models.Comment{UserID: author.ID, PostID: post.ID, Content: "second", CreatedAt: base.Add(5 * time.Minute)}
	elsewhere := &models.Comment{UserID: author.ID, PostID: other.ID, Content: "elsewhere", CreatedAt: base}
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(elsewhere).Error)

	ctx := context.Background()
	listed, err := comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "first", listed[0].Content)
	assert.Equal(t, "second", listed[1].Content)
}

func TestCommentRepository_GetByIDNotFound(t *testing.T) {
	db := setupRepoTestDB(t)
	comments := NewCommentRepository(db)

	_, err := comments.GetByID(context.Background(), 42)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
