package service

import (
	"context"
	"strings"

	"glimpse/internal/cache"
	"glimpse/internal/models"
	"glimpse/internal/repository"
	"glimpse/internal/validation"
)

// Font size bounds for styled text posts.
const (
	MinFontSize = 8
	MaxFontSize = 72
)

// CreatePostInput carries the fields of a new post. At least one of ImagePath
// and Content must be present; styling fields fall back to defaults.
type CreatePostInput struct {
	ImagePath       string `json:"image_path"`
	Content         string `json:"content"`
	FontSize        int    `json:"font_size"`
	TextColor       string `json:"text_color"`
	BackgroundColor string `json:"background_color"`
}

// UpdatePostInput carries the updatable post fields. Nil means unchanged.
type UpdatePostInput struct {
	ImagePath       *string `json:"image_path"`
	Content         *string `json:"content"`
	FontSize        *int    `json:"font_size"`
	TextColor       *string `json:"text_color"`
	BackgroundColor *string `json:"background_color"`
}

// PostPage is one page of the reverse-chronological feed plus the total
// number of posts matching the query across all pages.
type PostPage struct {
	Posts      []models.Post `json:"posts"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}

// PostService implements the post, feed and like operations.
type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

// NewPostService creates a PostService with its dependencies.
func NewPostService(posts repository.PostRepository, users repository.UserRepository) *PostService {
	return &PostService{posts: posts, users: users}
}

func validateStyling(fontSize int, textColor, backgroundColor string) error {
	if fontSize < MinFontSize || fontSize > MaxFontSize {
		return models.NewValidationError("font size out of range")
	}
	if err := validation.ValidateHexColor(textColor); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateHexColor(backgroundColor); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

// CreatePost validates and stores a new post owned by authorID. A post may
// carry an image, text, or both, but never neither.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, input CreatePostInput) (*models.Post, error) {
	hasImage := strings.TrimSpace(input.ImagePath) != ""
	hasText := strings.TrimSpace(input.Content) != ""
	if !hasImage && !hasText {
		return nil, models.NewValidationError("A post needs an image, some text, or both")
	}

	if input.FontSize == 0 {
		input.FontSize = models.DefaultFontSize
	}
	if input.TextColor == "" {
		input.TextColor = models.DefaultTextColor
	}
	if input.BackgroundColor == "" {
		input.BackgroundColor = models.DefaultBackgroundColor
	}
	if err := validateStyling(input.FontSize, input.TextColor, input.BackgroundColor); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:          authorID,
		ImagePath:       input.ImagePath,
		Content:         input.Content,
		FontSize:        input.FontSize,
		TextColor:       input.TextColor,
		BackgroundColor: input.BackgroundColor,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns a single post with its read-time aggregates. currentUserID
// may be zero for anonymous callers; Liked is then always false.
func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID, currentUserID)
}

// UpdatePost applies the non-nil fields of input to the caller's own post.
func (s *PostService) UpdatePost(ctx context.Context, postID, callerID uint, input UpdatePostInput) (*models.Post, error) {
	if input.ImagePath != nil || input.Content != nil {
		current, err := s.posts.GetByID(ctx, postID, callerID)
		if err != nil {
			return nil, err
		}
		image := current.ImagePath
		text := current.Content
		if input.ImagePath != nil {
			image = *input.ImagePath
		}
		if input.Content != nil {
			text = *input.Content
		}
		if strings.TrimSpace(image) == "" && strings.TrimSpace(text) == "" {
			return nil, models.NewValidationError("A post needs an image, some text, or both")
		}
	}
	if input.FontSize != nil && (*input.FontSize < MinFontSize || *input.FontSize > MaxFontSize) {
		return nil, models.NewValidationError("font size out of range")
	}
	if input.TextColor != nil {
		if err := validation.ValidateHexColor(*input.TextColor); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if input.BackgroundColor != nil {
		if err := validation.ValidateHexColor(*input.BackgroundColor); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	patch := repository.PostPatch{
		ImagePath:       input.ImagePath,
		Content:         input.Content,
		FontSize:        input.FontSize,
		TextColor:       input.TextColor,
		BackgroundColor: input.BackgroundColor,
	}
	return s.posts.UpdateOwned(ctx, postID, callerID, patch)
}

// DeletePost removes the caller's own post together with its likes and comments.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID uint) error {
	return s.posts.DeleteOwned(ctx, postID, callerID)
}

// ListPosts returns one page of the global feed, newest first. Pages are
// 1-indexed; an anonymous first page is served through the cache since it is
// identical for every anonymous caller.
func (s *PostService) ListPosts(ctx context.Context, page, pageSize int, currentUserID uint) (*PostPage, error) {
	offset := (page - 1) * pageSize

	if page == 1 && currentUserID == 0 {
		var cached PostPage
		err := cache.Aside(ctx, cache.PostsListFirstKey, &cached, cache.PostsListTTL, func() error {
			posts, total, err := s.posts.List(ctx, pageSize, offset, currentUserID)
			if err != nil {
				return err
			}
			cached = PostPage{Posts: posts, TotalCount: total, Page: page, PageSize: pageSize}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	posts, total, err := s.posts.List(ctx, pageSize, offset, currentUserID)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

// ListPostsByUser returns one page of the named user's posts, newest first,
// together with the author's profile. An unknown username is a not-found error.
func (s *PostService) ListPostsByUser(ctx context.Context, username string, page, pageSize int, currentUserID uint) (*models.User, *PostPage, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if author == nil {
		return nil, nil, models.NewNotFoundError("User", username)
	}

	offset := (page - 1) * pageSize
	posts, total, err := s.posts.GetByUserID(ctx, author.ID, pageSize, offset, currentUserID)
	if err != nil {
		return nil, nil, err
	}
	return author, &PostPage{Posts: posts, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

// LikePost records the caller's like. Liking the same post twice is a conflict.
func (s *PostService) LikePost(ctx context.Context, callerID, postID uint) error {
	return s.posts.Like(ctx, callerID, postID)
}

// UnlikePost removes the caller's like. Unliking a post the caller never
// liked is a not-found error.
func (s *PostService) UnlikePost(ctx context.Context, callerID, postID uint) error {
	return s.posts.Unlike(ctx, callerID, postID)
}

// HasLiked reports whether the caller has liked the post.
func (s *PostService) HasLiked(ctx context.Context, callerID, postID uint) (bool, error) {
	return s.posts.IsLiked(ctx, callerID, postID)
}
