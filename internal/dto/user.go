package dto

import (
	"time"

	"github.com/caroltfg2024/unitasks-backend/internal/models"
	"github.com/caroltfg2024/unitasks-backend/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntryDTO represents one ranked scoreboard row
type LeaderboardEntryDTO struct {
	UserID          uint64 `json:"user_id"`
	Name            string `json:"name"`
	Lastname        string `json:"lastname"`
	Email           string `json:"email"`
	TotalTasks      int64  `json:"total_tasks"`
	PendingTasks    int64  `json:"pending_tasks"`
	InProgressTasks int64  `json:"in_progress_tasks"`
	DoneTasks       int64  `json:"done_tasks"`
	ExpiredTasks    int64  `json:"expired_tasks"`
	Points          int64  `json:"points"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Lastname:  user.Lastname,
		Email:     user.Email,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// ToLeaderboardEntryDTO converts a leaderboard entry to its wire shape
func ToLeaderboardEntryDTO(entry services.LeaderboardEntry) LeaderboardEntryDTO {
	return LeaderboardEntryDTO{
		UserID:          entry.UserID,
		Name:            entry.Name,
		Lastname:        entry.Lastname,
		Email:           entry.Email,
		TotalTasks:      entry.TotalTasks,
		PendingTasks:    entry.PendingTasks,
		InProgressTasks: entry.InProgressTasks,
		DoneTasks:       entry.DoneTasks,
		ExpiredTasks:    entry.ExpiredTasks,
		Points:          entry.Points,
	}
}

// ToLeaderboardResponse converts the ordered entries, preserving order
func ToLeaderboardResponse(entries []services.LeaderboardEntry) []LeaderboardEntryDTO {
	out := make([]LeaderboardEntryDTO, len(entries))
	for i, entry := range entries {
		out[i] = ToLeaderboardEntryDTO(entry)
	}
	return out
}
