package service

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/repository"
	"glimpse/internal/validation"
)

// AddCommentInput carries a new comment's target post and text.
type AddCommentInput struct {
	PostID  uint   `json:"post_id"`
	Content string `json:"content"`
}

// CommentService implements comment operations.
type CommentService struct {
	comments repository.CommentRepository
}

// NewCommentService creates a CommentService with its dependencies.
func NewCommentService(comments repository.CommentRepository) *CommentService {
	return &CommentService{comments: comments}
}

// AddComment validates and stores a comment by authorID on the given post.
func (s *CommentService) AddComment(ctx context.Context, authorID uint, input AddCommentInput) (*models.Comment, error) {
	if input.PostID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	if err := validation.ValidateCommentContent(input.Content, models.MaxCommentLength); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		UserID:  authorID,
		PostID:  input.PostID,
		Content: input.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns all comments on a post, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// DeleteComment removes the caller's own comment.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, callerID uint) error {
	return s.comments.DeleteOwned(ctx, commentID, callerID)
}
