package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestPostService(t *testing.T, posts *stubPostRepo, users *stubUserRepo) *PostService {
	t.Helper()
	media := NewMediaStore(t.TempDir(), "/media", 10)
	feed := NewFeedService(posts, users)
	return NewPostService(posts, users, media, feed)
}

func TestPostService_CreateRejectsEmptyComposer(t *testing.T) {
	posts := &stubPostRepo{}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := newTestPostService(t, posts, users)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  1,
		Content: "   \n\t ",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	// Rejected before any persistence work.
	assert.Zero(t, posts.createCalls)
}

func TestPostService_CreateTextOnly(t *testing.T) {
	posts := &stubPostRepo{}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := newTestPostService(t, posts, users)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  1,
		Content: "  hello world  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Content)
	assert.Empty(t, post.ImageURL)
	require.NotNil(t, post.Author)
	assert.Equal(t, "alice", post.Author.Username)
}

func TestPostService_CreateImageOnly(t *testing.T) {
	posts := &stubPostRepo{}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := newTestPostService(t, posts, users)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: 1,
		Image:  makePNG(t, 32, 32),
	})
	require.NoError(t, err)
	assert.Empty(t, post.Content)
	assert.Contains(t, post.ImageURL, "/media/1-")
	assert.Contains(t, post.ImageURL, ".jpg")
}

func TestPostService_CreateAbortsWhenStorageFails(t *testing.T) {
	posts := &stubPostRepo{}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := newTestPostService(t, posts, users)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  1,
		Content: "caption",
		Image:   []byte("this is not an image"),
	})
	require.Error(t, err)
	// No post row may exist referencing media that was never written.
	assert.Zero(t, posts.createCalls)
}

func TestPostService_UpdateOwnerOnly(t *testing.T) {
	posts := &stubPostRepo{posts: []*models.Post{
		{ID: 1, UserID: 1, Content: "original"},
	}}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := newTestPostService(t, posts, users)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: 2, PostID: 1, Content: "hijacked",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	updated, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: 1, PostID: 1, Content: "revised",
	})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Content)
}

func TestPostService_DeleteOwnerOnly(t *testing.T) {
	posts := &stubPostRepo{posts: []*models.Post{
		{ID: 1, UserID: 1, Content: "mine"},
	}}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := newTestPostService(t, posts, users)

	err := svc.DeletePost(context.Background(), 2, 1)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	require.NoError(t, svc.DeletePost(context.Background(), 1, 1))
	_, err = posts.GetByID(context.Background(), 1)
	require.Error(t, err)
}

func TestPostService_ToggleLikeRoundTrip(t *testing.T) {
	posts := &stubPostRepo{posts: []*models.Post{
		{ID: 1, UserID: 1, Content: "toggle me"},
	}}
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	svc := newTestPostService(t, posts, users)

	ctx := context.Background()

	liked, err := svc.ToggleLike(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikesCount)
	assert.Equal(t, 1, posts.likeCalls)

	posts.likedIDs = []uint{1}
	unliked, err := svc.ToggleLike(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.LikesCount)
	assert.Equal(t, 1, posts.unlikeCalls)
}

func TestPostService_ToggleLikeUnknownPost(t *testing.T) {
	svc := newTestPostService(t, &stubPostRepo{}, &stubUserRepo{})

	_, err := svc.ToggleLike(context.Background(), 1, 42)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
