package service

import (
	"context"
	"strings"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// MaxPostContentLen caps post text length.
const MaxPostContentLen = 10000

// PostService owns the post lifecycle: composing, editing, deleting and
// toggling likes.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	media    *MediaStore
	feed     *FeedService
}

// CreatePostInput carries a new submission. Image is the raw upload, nil for
// text-only posts.
type CreatePostInput struct {
	UserID           uint
	Content          string
	Image            []byte
	ImageContentType string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	media *MediaStore,
	feed *FeedService,
) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo, media: media, feed: feed}
}

// CreatePost validates and persists a submission. A post must carry text,
// an image, or both; an empty composer is rejected before any storage or
// database work happens. When an image is present it is stored first, and a
// storage failure aborts the whole submission so no post row ever references
// media that was never written.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.create")
	defer span.End()

	content := strings.TrimSpace(in.Content)
	if content == "" && len(in.Image) == 0 {
		return nil, models.NewValidationError("Post must have content or an image")
	}
	if len(content) > MaxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post := &models.Post{
		UserID:  in.UserID,
		Content: content,
	}

	if len(in.Image) > 0 {
		stored, err := s.media.Save(ctx, in.UserID, in.Image, in.ImageContentType)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		post.ImageURL = stored.URL
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		span.SetError(err)
		if post.ImageURL != "" {
			s.media.Remove(ctx, post.ImageURL)
		}
		return nil, err
	}
	span.AddAttributes(attribute.Int64("post.id", int64(post.ID)))

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err == nil {
		post.Author = author
	}
	middleware.Logger.InfoContext(ctx, "post created",
		"post_id", post.ID, "has_image", post.ImageURL != "")
	return post, nil
}

// UpdatePost edits the text of the caller's own post. Only content changes;
// the image and timestamps stay as they were.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > MaxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}

	if err := s.postRepo.UpdateContent(ctx, in.PostID, content); err != nil {
		return nil, err
	}
	return s.feed.GetPost(ctx, in.UserID, in.PostID)
}

// DeletePost removes the caller's own post along with its comments, likes
// and any stored image.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	if post.ImageURL != "" {
		s.media.Remove(ctx, post.ImageURL)
	}
	middleware.Logger.InfoContext(ctx, "post deleted", "post_id", postID)
	return nil
}

// ToggleLike flips the caller's like on a post and returns the post as the
// database now sees it. The row insert or delete and the counter move happen
// in one transaction, and the response is re-read afterwards, so the caller
// always renders the authoritative state rather than an optimistic guess.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.toggle_like")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if liked {
		err = s.postRepo.Unlike(ctx, userID, postID)
	} else {
		err = s.postRepo.Like(ctx, userID, postID)
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return s.feed.GetPost(ctx, userID, postID)
}
