package repository

import (
	"context"
	"testing"
	"time"

	"glimpse/internal/cache"
	"glimpse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_GetByID_Aggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "aggregate me")

	require.NoError(t, db.Create(&models.Like{UserID: bob.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: bob.ID, PostID: post.ID, Content: "first"}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: alice.ID, PostID: post.ID, Content: "second"}).Error)

	// Counts are read-time aggregates; Liked depends on who is asking.
	seenByBob, err := repo.GetByID(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, seenByBob.LikesCount)
	assert.Equal(t, 2, seenByBob.CommentsCount)
	assert.True(t, seenByBob.Liked)
	assert.Equal(t, "alice", seenByBob.User.Username)

	seenByAlice, err := repo.GetByID(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, seenByAlice.Liked)

	seenAnonymously, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, seenAnonymously.Liked)
	assert.Equal(t, 1, seenAnonymously.LikesCount)

	_, err = repo.GetByID(ctx, 9999, 0)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_GetByID_AnonymousReadsCached(t *testing.T) {
	db := setupTestDB(t)
	mr := setupTestCache(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "original")

	// The anonymous read populates the post key.
	seen, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "original", seen.Content)
	assert.True(t, mr.Exists(cache.PostKey(post.ID)))

	// Change the row behind the cache's back: the anonymous read still serves
	// the cached copy, while a read for a known caller goes to the database.
	require.NoError(t, db.Exec("UPDATE posts SET content = ? WHERE id = ?", "edited", post.ID).Error)

	seen, err = repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "original", seen.Content)

	seenByBob, err := repo.GetByID(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", seenByBob.Content)

	// A like drops the key, so the next anonymous read sees fresh aggregates.
	require.NoError(t, repo.Like(ctx, bob.ID, post.ID))
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))

	seen, err = repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "edited", seen.Content)
	assert.Equal(t, 1, seen.LikesCount)
}

func TestPostRepository_List_PaginationAndOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	base := time.Now().Add(-time.Hour)
	ids := make([]uint, 0, 5)
	for i := 0; i < 5; i++ {
		post := &models.Post{
			UserID:          alice.ID,
			Content:         "post",
			FontSize:        models.DefaultFontSize,
			TextColor:       models.DefaultTextColor,
			BackgroundColor: models.DefaultBackgroundColor,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(post).Error)
		ids = append(ids, post.ID)
	}

	// Newest first, stable across pages, every page carrying the full total.
	pageOne, total, err := repo.List(ctx, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, pageOne, 2)
	assert.Equal(t, ids[4], pageOne[0].ID)
	assert.Equal(t, ids[3], pageOne[1].ID)

	pageTwo, total, err := repo.List(ctx, 2, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, pageTwo, 2)
	assert.Equal(t, ids[2], pageTwo[0].ID)
	assert.Equal(t, ids[1], pageTwo[1].ID)

	pageThree, total, err := repo.List(ctx, 2, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, pageThree, 1)
	assert.Equal(t, ids[0], pageThree[0].ID)

	beyond, total, err := repo.List(ctx, 2, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, beyond)
}

func TestPostRepository_GetByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestPost(t, db, alice.ID, "one")
	createTestPost(t, db, alice.ID, "two")
	createTestPost(t, db, bob.ID, "bob's")

	posts, total, err := repo.GetByUserID(ctx, alice.ID, 10, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 2)
	for _, post := range posts {
		assert.Equal(t, alice.ID, post.UserID)
	}
}

func TestPostRepository_UpdateOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "original")

	content := "edited"
	fontSize := 24
	updated, err := repo.UpdateOwned(ctx, post.ID, alice.ID, PostPatch{Content: &content, FontSize: &fontSize})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, 24, updated.FontSize)
	assert.Equal(t, models.DefaultTextColor, updated.TextColor)

	_, err = repo.UpdateOwned(ctx, post.ID, bob.ID, PostPatch{Content: &content})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = repo.UpdateOwned(ctx, 9999, alice.ID, PostPatch{Content: &content})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_DeleteOwned_Cascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "doomed")
	survivor := createTestPost(t, db, alice.ID, "survivor")

	require.NoError(t, db.Create(&models.Like{UserID: bob.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: bob.ID, PostID: post.ID, Content: "bye"}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: bob.ID, PostID: survivor.ID}).Error)

	err := repo.DeleteOwned(ctx, post.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	require.NoError(t, repo.DeleteOwned(ctx, post.ID, alice.ID))

	assert.Equal(t, int64(1), countRows(t, db, &models.Post{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Like{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.Comment{}))

	err = repo.DeleteOwned(ctx, post.ID, alice.ID)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_LikeUnlike(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "likeable")

	require.NoError(t, repo.Like(ctx, bob.ID, post.ID))

	// One like per (user, post): the composite key turns a repeat into a conflict.
	err := repo.Like(ctx, bob.ID, post.ID)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))

	// A different user liking the same post is fine.
	require.NoError(t, repo.Like(ctx, alice.ID, post.ID))

	err = repo.Like(ctx, bob.ID, 9999)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	liked, err := repo.IsLiked(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.Unlike(ctx, bob.ID, post.ID))

	liked, err = repo.IsLiked(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	err = repo.Unlike(ctx, bob.ID, post.ID)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
