package service

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/repository"
	"glimpse/internal/token"
	"glimpse/internal/validation"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileInput carries the mutable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

// ChangePasswordInput carries a password rotation request.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserService implements account lifecycle and authentication.
type UserService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens *token.Service
}

// NewUserService creates a UserService with its dependencies.
func NewUserService(users repository.UserRepository, hasher PasswordHasher, tokens *token.Service) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens}
}

// Register validates the input, checks username and email availability, and
// creates the account with a hashed password and the default avatar. The
// pre-checks give friendly errors; the database unique constraints remain the
// authority under concurrency.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.users.GetByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}
	if existing, err := s.users.GetByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Avatar:   models.DefaultAvatar,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a signed token. An unknown
// username and a wrong password produce the same error, so the response does
// not reveal whether the account exists.
func (s *UserService) Login(ctx context.Context, input LoginInput) (string, *models.User, error) {
	user, err := s.VerifyCredentials(ctx, input.Username, input.Password)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, models.NewUnauthorizedError("Invalid username or password")
	}

	signed, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return signed, user, nil
}

// VerifyCredentials returns the user when username and password match, and
// (nil, nil) on any mismatch. A mismatch is a normal outcome, not an error.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if !s.hasher.Compare(user.Password, password) {
		return nil, nil
	}
	return user, nil
}

// GetProfile returns the user with the given ID.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetByUsername returns the user with the given username, or a not-found error.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of input to the caller's profile.
// The read bypasses the cache: cached copies carry no password hash, and the
// row written here must be the row that is actually stored.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetWithCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		if err := validation.ValidateUsername(*input.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if existing, err := s.users.GetByUsername(ctx, *input.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("Username already taken")
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		if err := validation.ValidateEmail(*input.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if existing, err := s.users.GetByEmail(ctx, *input.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("Email already registered")
		}
		user.Email = *input.Email
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword rotates the caller's password after verifying the current
// one. A wrong current password is an authentication failure.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input ChangePasswordInput) error {
	if err := validation.ValidatePassword(input.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.users.GetWithCredentials(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(user.Password, input.CurrentPassword) {
		return models.NewUnauthorizedError("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// DeleteAccount removes the caller's account and everything it owns. Tokens
// already issued stay valid until expiry; the routes they reach will report
// the user as gone.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.users.Delete(ctx, userID)
}
