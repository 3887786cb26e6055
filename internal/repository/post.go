package repository

import (
	"context"
	"errors"

	"glimpse/internal/authz"
	"glimpse/internal/cache"
	"glimpse/internal/models"
	"glimpse/internal/observability"

	"gorm.io/gorm"
)

// PostPatch carries the updatable fields of a post. Nil pointers leave the
// corresponding column untouched.
type PostPatch struct {
	ImagePath       *string
	Content         *string
	FontSize        *int
	TextColor       *string
	BackgroundColor *string
}

// PostRepository defines persistence operations for posts and likes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]models.Post, int64, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]models.Post, int64, error)
	UpdateOwned(ctx context.Context, postID, callerID uint, patch PostPatch) (*models.Post, error)
	DeleteOwned(ctx context.Context, postID, callerID uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails decorates a post query with read-time aggregates: like and
// comment counts, plus whether currentUserID has liked each post. Counts are
// computed from the source tables at query time rather than stored.
func applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	return db.
		Select(`posts.*,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count,
			EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked`,
			currentUserID).
		Preload("User")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Preload("User").First(post, post.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

// GetByID loads a post with its read-time aggregates. Anonymous reads are
// served through the cache; reads for a known caller bypass it because the
// liked flag is per-viewer. Every mutation that changes the aggregates
// invalidates the post key.
func (r *postRepository) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	var post models.Post
	fetch := func() error {
		query := applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{}), currentUserID)
		if err := query.First(&post, "posts.id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	if currentUserID != 0 {
		if err := fetch(); err != nil {
			return nil, err
		}
		return &post, nil
	}

	if err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, fetch); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []models.Post
	query := applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{}), currentUserID)
	if err := query.
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []models.Post
	query := applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{}), currentUserID)
	if err := query.
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// UpdateOwned loads the post, checks ownership and applies the patch inside
// one transaction, so the ownership check and the mutation see the same row.
func (r *postRepository) UpdateOwned(ctx context.Context, postID, callerID uint, patch PostPatch) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}
		if err := authz.OwnerOnly(callerID, post.UserID); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.ImagePath != nil {
			updates["image_path"] = *patch.ImagePath
		}
		if patch.Content != nil {
			updates["content"] = *patch.Content
		}
		if patch.FontSize != nil {
			updates["font_size"] = *patch.FontSize
		}
		if patch.TextColor != nil {
			updates["text_color"] = *patch.TextColor
		}
		if patch.BackgroundColor != nil {
			updates["background_color"] = *patch.BackgroundColor
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidatePostsList(ctx)
	return r.GetByID(ctx, postID, callerID)
}

// DeleteOwned removes the post and its dependent likes and comments in one
// transaction, after verifying the caller owns the post.
func (r *postRepository) DeleteOwned(ctx context.Context, postID, callerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}
		if err := authz.OwnerOnly(callerID, post.UserID); err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return models.NewConsistencyError("failed to delete post's likes", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return models.NewConsistencyError("failed to delete post's comments", err)
		}
		if err := tx.Delete(&models.Post{}, postID).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.CascadeDeletes.WithLabelValues("post").Inc()
	cache.InvalidatePost(ctx, postID)
	cache.InvalidatePostsList(ctx)
	return nil
}

// Like records that userID liked postID. The composite primary key on likes
// makes a second like from the same user a uniqueness violation, which is
// surfaced as a conflict.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists bool
		if err := tx.Model(&models.Post{}).
			Select("COUNT(*) > 0").
			Where("id = ?", postID).
			Find(&exists).Error; err != nil {
			return models.NewInternalError(err)
		}
		if !exists {
			return models.NewNotFoundError("Post", postID)
		}

		like := models.Like{UserID: userID, PostID: postID}
		if err := tx.Create(&like).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("You have already liked this post")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Like", postID)
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var liked bool
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("COUNT(*) > 0").
		Where("user_id = ? AND post_id = ?", userID, postID).
		Find(&liked).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}
