package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService assembles the home feed: posts newest first, each carrying its
// author profile and whether the viewer has liked it.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{postRepo: postRepo, userRepo: userRepo}
}

// GetFeed loads every post and merges in authors and the viewer's like state.
// Authors are fetched in one IN query keyed by the distinct author IDs, then
// attached by map lookup; likes the same way. viewerID of zero means an
// anonymous reader, for whom Liked is always false.
//
// Any read failure is surfaced to the caller; a feed that silently renders
// empty on error is worse than one that reports it.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "feed.get")
	defer span.End()

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(posts) == 0 {
		return []*models.Post{}, nil
	}
	span.AddAttributes(attribute.Int("feed.posts", len(posts)))

	if err := s.attachAuthors(ctx, posts); err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := s.attachLikes(ctx, viewerID, posts); err != nil {
		span.SetError(err)
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post with author and viewer like state attached.
func (s *FeedService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	single := []*models.Post{post}
	if err := s.attachAuthors(ctx, single); err != nil {
		return nil, err
	}
	if err := s.attachLikes(ctx, viewerID, single); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *FeedService) attachAuthors(ctx context.Context, posts []*models.Post) error {
	ids := make([]uint, 0, len(posts))
	seen := make(map[uint]bool, len(posts))
	for _, p := range posts {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, p := range posts {
		p.Author = byID[p.UserID]
	}
	return nil
}

func (s *FeedService) attachLikes(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if viewerID == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	liked, err := s.postRepo.GetLikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	likedSet := make(map[uint]bool, len(liked))
	for _, id := range liked {
		likedSet[id] = true
	}
	for _, p := range posts {
		p.Liked = likedSet[p.ID]
	}
	return nil
}
