package service

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPostRepo is an in-memory PostRepository for service tests.
type stubPostRepo struct {
	posts       []*models.Post
	likedIDs    []uint
	listErr     error
	createCalls int
	createErr   error
	likeCalls   int
	unlikeCalls int
	liked       bool
}

func (s *stubPostRepo) Create(_ context.Context, post *models.Post) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	post.ID = uint(len(s.posts) + 1)
	s.posts = append(s.posts, post)
	return nil
}

func (s *stubPostRepo) GetByID(_ context.Context, id uint) (*models.Post, error) {
	for _, p := range s.posts {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (s *stubPostRepo) List(_ context.Context) ([]*models.Post, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.Post, len(s.posts))
	for i, p := range s.posts {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

func (s *stubPostRepo) UpdateContent(_ context.Context, id uint, content string) error {
	for _, p := range s.posts {
		if p.ID == id {
			p.Content = content
			return nil
		}
	}
	return models.NewNotFoundError("Post", id)
}

func (s *stubPostRepo) Delete(_ context.Context, id uint) error {
	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Post", id)
}

func (s *stubPostRepo) IsLiked(_ context.Context, _, _ uint) (bool, error) {
	return s.liked, nil
}

func (s *stubPostRepo) GetLikedPostIDs(_ context.Context, _ uint, _ []uint) ([]uint, error) {
	return s.likedIDs, nil
}

func (s *stubPostRepo) Like(_ context.Context, _, postID uint) error {
	s.likeCalls++
	s.liked = true
	for _, p := range s.posts {
		if p.ID == postID {
			p.LikesCount++
		}
	}
	return nil
}

func (s *stubPostRepo) Unlike(_ context.Context, _, postID uint) error {
	s.unlikeCalls++
	s.liked = false
	for _, p := range s.posts {
		if p.ID == postID && p.LikesCount > 0 {
			p.LikesCount--
		}
	}
	return nil
}

func (s *stubPostRepo) RecountEngagement(_ context.Context) error { return nil }

// stubUserRepo is an in-memory UserRepository for service tests.
type stubUserRepo struct {
	users      map[uint]*models.User
	getByIDErr error
}

func (s *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if s.getByIDErr != nil {
		return nil, s.getByIDErr
	}
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *stubUserRepo) GetByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return models.NewValidationError("User already exists")
		}
	}
	user.ID = uint(len(s.users) + 1)
	if s.users == nil {
		s.users = map[uint]*models.User{}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func TestFeedService_AttachesAuthorsRegardlessOfOrder(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
	}}
	posts := &stubPostRepo{posts: []*models.Post{
		{ID: 10, UserID: 2, Content: "from bob"},
		{ID: 11, UserID: 1, Content: "from alice"},
		{ID: 12, UserID: 2, Content: "bob again"},
	}}
	svc := NewFeedService(posts, users)

	feed, err := svc.GetFeed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// Every post carries the profile whose ID matches its user_id, however
	// the user query happened to order its results.
	for _, p := range feed {
		require.NotNil(t, p.Author, "post %d missing author", p.ID)
		assert.Equal(t, p.UserID, p.Author.ID)
	}
	assert.Equal(t, "bob", feed[0].Author.Username)
	assert.Equal(t, "alice", feed[1].Author.Username)
}

func TestFeedService_MissingAuthorLeftNil(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	posts := &stubPostRepo{posts: []*models.Post{
		{ID: 10, UserID: 1, Content: "known"},
		{ID: 11, UserID: 77, Content: "orphan"},
	}}
	svc := NewFeedService(posts, users)

	feed, err := svc.GetFeed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.NotNil(t, feed[0].Author)
	assert.Nil(t, feed[1].Author)
}

func TestFeedService_LikedOnlyForViewer(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{1: {ID: 1, Username: "alice"}}}
	posts := &stubPostRepo{
		posts: []*models.Post{
			{ID: 10, UserID: 1, Content: "a"},
			{ID: 11, UserID: 1, Content: "b"},
		},
		likedIDs: []uint{11},
	}
	svc := NewFeedService(posts, users)

	feed, err := svc.GetFeed(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, feed[0].Liked)
	assert.True(t, feed[1].Liked)

	// Anonymous viewers never see liked state.
	feed, err = svc.GetFeed(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, feed[0].Liked)
	assert.False(t, feed[1].Liked)
}

func TestFeedService_ReadErrorSurfaces(t *testing.T) {
	users := &stubUserRepo{}
	posts := &stubPostRepo{listErr: models.NewInternalError(assert.AnError)}
	svc := NewFeedService(posts, users)

	_, err := svc.GetFeed(context.Background(), 0)
	require.Error(t, err)
}

func TestFeedService_EmptyFeed(t *testing.T) {
	svc := NewFeedService(&stubPostRepo{}, &stubUserRepo{})
	feed, err := svc.GetFeed(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}
