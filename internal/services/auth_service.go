package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caroltfg2024/unitasks-backend/internal/auth"
	"github.com/caroltfg2024/unitasks-backend/internal/constants"
	"github.com/caroltfg2024/unitasks-backend/internal/models"
	"github.com/caroltfg2024/unitasks-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrUserNotFound       = errors.New("user not found")
	ErrFailedToCreateUser = errors.New("failed to create user")
)

// AuthService handles registration, login and token issuance.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
	codec    *auth.TokenCodec
	log      *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher *auth.PasswordHasher, codec *auth.TokenCodec, log *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		codec:    codec,
		log:      log,
	}
}

// RegisterInput represents the required information to create a new account.
type RegisterInput struct {
	Name     string
	Lastname string
	Email    string
	Password string
}

// AuthResult is a freshly issued token together with the account it belongs to.
type AuthResult struct {
	Token string
	User  *models.User
}

// Register creates a new account and issues its first token. The email is
// normalized before the uniqueness check so case and whitespace variants of
// an existing address collide.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	email := models.NormalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		s.log.Warn("registration attempt with duplicate email", "email", email)
		return nil, ErrEmailTaken
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         input.Name,
		Lastname:     input.Lastname,
		Email:        email,
		PasswordHash: digest,
		Active:       true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	token, err := s.codec.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &AuthResult{Token: token, User: user}, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a fresh token. Unknown email and
// wrong password yield the same ErrInvalidCredentials; the unknown-email
// path still burns a digest comparison so the two are not separable by
// timing. The active check runs only after the credential check has passed,
// so a disabled-account response never leaks whether a password was right
// for some other address.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := models.NormalizeEmail(input.Email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.VerifyDummy(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		s.log.Warn("login attempt on disabled account", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}

	token, err := s.codec.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Info("user logged in", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
