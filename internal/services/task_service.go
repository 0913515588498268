package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caroltfg2024/unitasks-backend/internal/auth"
	"github.com/caroltfg2024/unitasks-backend/internal/constants"
	"github.com/caroltfg2024/unitasks-backend/internal/models"
	"github.com/caroltfg2024/unitasks-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound covers both a missing task and a task owned by someone
	// else. Collapsing the two keeps ownership violations indistinguishable
	// from nonexistent resources.
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title is too long")
	ErrDescriptionTooLong = errors.New("description is too long")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidPriority    = errors.New("invalid task priority")
)

// TaskService handles owner-scoped task business logic. Every operation on
// an existing task loads it first and authorizes the principal against the
// task's owner before any mutation or response.
type TaskService struct {
	taskRepo repository.TaskRepository
	log      *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, log *slog.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		log:      log,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged. The owner is never among the updatable fields.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
}

// ListTasks returns the principal's own tasks.
func (s *TaskService) ListTasks(principal auth.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}

	filter := repository.TaskFilter{
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	tasks, total, err := s.taskRepo.ListByUserID(principal.UserID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// CreateTask creates a task owned by the principal. Status defaults to
// PENDING and priority to MEDIUM when unset.
func (s *TaskService) CreateTask(principal auth.Principal, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(title) > constants.MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(input.Description) > constants.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		UserID:      principal.UserID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.Info("task created", "task_id", task.ID, "user_id", principal.UserID)
	return task, nil
}

// GetTask returns a task if it exists and the principal owns it.
func (s *TaskService) GetTask(principal auth.Principal, taskID uint64) (*models.Task, error) {
	return s.ownedTask(principal, taskID)
}

// UpdateTask updates the allowed fields of one of the principal's tasks.
func (s *TaskService) UpdateTask(principal auth.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.ownedTask(principal, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		if len(title) > constants.MaxTitleLength {
			return nil, ErrTitleTooLong
		}
		task.Title = title
	}
	if input.Description != nil {
		if len(*input.Description) > constants.MaxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.log.Info("task updated", "task_id", task.ID, "user_id", principal.UserID)
	return task, nil
}

// ChangeStatus sets the state of one of the principal's tasks.
func (s *TaskService) ChangeStatus(principal auth.Principal, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.ownedTask(principal, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.log.Info("task status changed", "task_id", task.ID, "status", status)
	return task, nil
}

// DeleteTask removes one of the principal's tasks.
func (s *TaskService) DeleteTask(principal auth.Principal, taskID uint64) error {
	task, err := s.ownedTask(principal, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.Info("task deleted", "task_id", task.ID, "user_id", principal.UserID)
	return nil
}

// CountTasks counts the principal's tasks.
func (s *TaskService) CountTasks(principal auth.Principal) (int64, error) {
	count, err := s.taskRepo.CountByUserID(principal.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// ownedTask loads the task and checks ownership. A task owned by someone
// else yields the same ErrTaskNotFound as a missing one.
func (s *TaskService) ownedTask(principal auth.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !principal.Authorize(task.UserID) {
		return nil, ErrTaskNotFound
	}

	return task, nil
}
