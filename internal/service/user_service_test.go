package service

import (
	"context"
	"testing"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is an in-memory UserRepository for service tests.
type userRepoStub struct {
	users  map[uint]*models.User
	nextID uint
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[uint]*models.User), nextID: 1}
}

// GetByID mirrors the production cache path: the copy it returns carries no
// password hash, so a credential flow reading through it fails loudly here.
func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := *user
	copied.Password = ""
	return &copied, nil
}

func (s *userRepoStub) GetWithCredentials(_ context.Context, id uint) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := *user
	return &copied, nil
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.NewConflictError("Username or email already taken")
		}
	}
	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// Update persists profile columns only, as the real repository does: the
// stored password hash is untouched whatever the incoming struct carries.
func (s *userRepoStub) Update(_ context.Context, user *models.User) error {
	existing, ok := s.users[user.ID]
	if !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	copied := *user
	copied.Password = existing.Password
	s.users[user.ID] = &copied
	return nil
}

func (s *userRepoStub) UpdatePassword(_ context.Context, id uint, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	user.Password = passwordHash
	return nil
}

func (s *userRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return models.NewNotFoundError("User", id)
	}
	delete(s.users, id)
	return nil
}

func (s *userRepoStub) List(_ context.Context, _, _ int) ([]models.User, error) {
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func newTestUserService() (*UserService, *userRepoStub) {
	repo := newUserRepoStub()
	tokens := token.NewService("user-service-test-secret", time.Hour)
	return NewUserService(repo, NewPasswordHasher(), tokens), repo
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestUserService_Register(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.DefaultAvatar, user.Avatar)
	// Stored password is a hash, never the plaintext.
	assert.NotEqual(t, "Sup3rSecret", user.Password)
	assert.NotEmpty(t, user.Password)
}

func TestUserService_Register_Validation(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"bad username", RegisterInput{Username: "a", Email: "a@example.com", Password: "Sup3rSecret"}},
		{"bad email", RegisterInput{Username: "alice", Email: "nope", Password: "Sup3rSecret"}},
		{"weak password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "weak"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestUserService_Register_Conflicts(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "Sup3rSecret"})
	assertCode(t, err, models.CodeConflict)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "Sup3rSecret"})
	assertCode(t, err, models.CodeConflict)
}

func TestUserService_VerifyCredentials(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	// Unknown username and wrong password are both (nil, nil): a mismatch, not an error.
	user, err := svc.VerifyCredentials(ctx, "ghost", "Sup3rSecret")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.VerifyCredentials(ctx, "alice", "WrongPass1")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.VerifyCredentials(ctx, "alice", "Sup3rSecret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "WrongPass1"})
	assertCode(t, err, models.CodeUnauthorized)

	signed, user, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "Sup3rSecret"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	tokens := token.NewService("user-service-test-secret", time.Hour)
	identity, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "WrongPass1", NewPassword: "N3wSecret!"})
	assertCode(t, err, models.CodeUnauthorized)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "Sup3rSecret", NewPassword: "short"})
	assertCode(t, err, models.CodeValidation)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "Sup3rSecret", NewPassword: "N3wSecret!"})
	require.NoError(t, err)

	got, err := svc.VerifyCredentials(ctx, "alice", "Sup3rSecret")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.VerifyCredentials(ctx, "alice", "N3wSecret!")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	taken := "bob"
	_, err = svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Username: &taken})
	assertCode(t, err, models.CodeConflict)

	bio := "hello there"
	updated, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Equal(t, "alice", updated.Username)

	// Editing the profile must not disturb the stored credentials.
	got, err := svc.VerifyCredentials(ctx, "alice", "Sup3rSecret")
	require.NoError(t, err)
	require.NotNil(t, got)

	err = svc.ChangePassword(ctx, alice.ID, ChangePasswordInput{CurrentPassword: "Sup3rSecret", NewPassword: "N3wSecret!"})
	require.NoError(t, err)
}

func TestUserService_DeleteAccount(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, user.ID))
	assert.Empty(t, repo.users)

	err = svc.DeleteAccount(ctx, user.ID)
	assertCode(t, err, models.CodeNotFound)
}
