package repository

import (
	"github.com/caroltfg2024/unitasks-backend/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(email string) (*models.User, error)

	// ExistsByEmail reports whether a user with the normalized email exists
	ExistsByEmail(email string) (bool, error)

	// List retrieves users with pagination
	List(offset, limit int) ([]models.User, int64, error)

	// FindAll retrieves every user, unpaginated
	FindAll() ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Count counts all users
	Count() (int64, error)

	// DeleteWithTasks deletes a user and all tasks they own in a single transaction
	DeleteWithTasks(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// ListByUserID retrieves a user's tasks with filtering and pagination
	ListByUserID(userID uint64, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error

	// CountByUserID counts a user's tasks
	CountByUserID(userID uint64) (int64, error)

	// CountByUserIDAndStatus counts a user's tasks in a given state
	CountByUserIDAndStatus(userID uint64, status models.TaskStatus) (int64, error)
}
