package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// MaxCommentLen caps comment length.
const MaxCommentLen = 2000

// CommentService manages comment threads under posts. Comments are
// append-only: they can be created and listed, never edited or removed on
// their own.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, userRepo: userRepo}
}

// CreateComment validates and appends a comment to an existing post, bumping
// the post's comment counter in the same transaction as the insert. The
// returned comment carries the author profile so the caller can render it
// without a second round trip.
func (s *CommentService) CreateComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	span, ctx := observability.NewSpan(ctx, "comment.create")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	if len(content) > MaxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.SetError(err)
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		comment.Author = author
	}
	return comment, nil
}

// ListComments returns a post's thread oldest first with author profiles
// merged in. Profiles are fetched in one IN query over the distinct commenter
// IDs and attached by map lookup.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	span, ctx := observability.NewSpan(ctx, "comment.list")
	defer span.End()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(comments) == 0 {
		return []*models.Comment{}, nil
	}

	ids := make([]uint, 0, len(comments))
	seen := make(map[uint]bool, len(comments))
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, c := range comments {
		c.Author = byID[c.UserID]
	}
	return comments, nil
}
