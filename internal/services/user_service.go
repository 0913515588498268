package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/caroltfg2024/unitasks-backend/internal/auth"
	"github.com/caroltfg2024/unitasks-backend/internal/constants"
	"github.com/caroltfg2024/unitasks-backend/internal/models"
	"github.com/caroltfg2024/unitasks-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidPassword = errors.New("current password is incorrect")
	ErrNameRequired    = errors.New("name and lastname are required")
)

// UserService handles user lifecycle operations and the leaderboard.
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	hasher   *auth.PasswordHasher
	log      *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, hasher *auth.PasswordHasher, log *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		hasher:   hasher,
		log:      log,
	}
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, normalizing it first.
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves users with pagination.
func (s *UserService) ListUsers(offset, limit int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// CreateUserInput holds the fields for direct user creation.
type CreateUserInput struct {
	Name     string
	Lastname string
	Email    string
	Password string
}

// CreateUser creates an account without issuing a token. It applies the
// same normalization, uniqueness and password rules as registration.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	if input.Name == "" || input.Lastname == "" {
		return nil, ErrNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	email := models.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		s.log.Warn("creation attempt with duplicate email", "email", email)
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

	s.log.Info("user created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// UpdateUserInput holds the updatable profile fields. The password is not
// among them; ChangePassword is the only path that touches the digest.
type UpdateUserInput struct {
	Name     string
	Lastname string
	Email    string
}

// UpdateUser updates name, lastname and email. An email change re-checks
// uniqueness against the normalized form.
func (s *UserService) UpdateUser(id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.Name == "" || input.Lastname == "" {
		return nil, ErrNameRequired
	}
	user.Name = input.Name
	user.Lastname = input.Lastname

	email := models.NormalizeEmail(input.Email)
	if email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			s.log.Warn("update attempt to duplicate email", "user_id", id, "email", email)
			return nil, ErrEmailTaken
		}
		user.Email = email
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info("user updated", "user_id", user.ID)
	return user, nil
}

// ChangePassword replaces the stored digest after verifying the current
// plaintext password. On a mismatch the stored digest is left untouched.
func (s *UserService) ChangePassword(id uint64, oldPassword, newPassword string) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		s.log.Warn("password change with wrong current password", "user_id", id)
		return ErrInvalidPassword
	}

	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = digest
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info("password changed", "user_id", id)
	return nil
}

// SetActive flips the active flag. The flip is idempotent and has no effect
// on tokens already issued; those die at the identity-resolution step, which
// re-checks the flag on every request.
func (s *UserService) SetActive(id uint64, active bool) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	user.Active = active
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info("user active flag set", "user_id", id, "active", active)
	return user, nil
}

// DeleteUser removes a user together with all their tasks atomically.
func (s *UserService) DeleteUser(id uint64) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}

	if err := s.userRepo.DeleteWithTasks(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.log.Info("user deleted with tasks", "user_id", id)
	return nil
}

// CountUsers counts all users.
func (s *UserService) CountUsers() (int64, error) {
	count, err := s.userRepo.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// LeaderboardEntry is one ranked row of the scoreboard, recomputed on demand
// and never stored.
type LeaderboardEntry struct {
	UserID          uint64
	Name            string
	Lastname        string
	Email           string
	TotalTasks      int64
	PendingTasks    int64
	InProgressTasks int64
	DoneTasks       int64
	ExpiredTasks    int64
	Points          int64
}

// Leaderboard computes the ranked scoreboard over active users. Inactive
// users are excluded entirely. Points equal the done-task count. Entries are
// ordered by points descending; ties break on ascending user ID so the
// ordering is deterministic.
func (s *UserService) Leaderboard() ([]LeaderboardEntry, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		if !user.Active {
			continue
		}

		total, err := s.taskRepo.CountByUserID(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks for user %d: %w", user.ID, err)
		}

		entry := LeaderboardEntry{
			UserID:     user.ID,
			Name:       user.Name,
			Lastname:   user.Lastname,
			Email:      user.Email,
			TotalTasks: total,
		}

		for _, status := range models.AllTaskStatuses {
			count, err := s.taskRepo.CountByUserIDAndStatus(user.ID, status)
			if err != nil {
				return nil, fmt.Errorf("failed to count %s tasks for user %d: %w", status, user.ID, err)
			}
			switch status {
			case models.TaskStatusPending:
				entry.PendingTasks = count
			case models.TaskStatusInProgress:
				entry.InProgressTasks = count
			case models.TaskStatusDone:
				entry.DoneTasks = count
			case models.TaskStatusExpired:
				entry.ExpiredTasks = count
			}
		}

		entry.Points = entry.DoneTasks
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})

	return entries, nil
}
