package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/caroltfg2024/unitasks-backend/internal/dto"
	"github.com/caroltfg2024/unitasks-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func lookupUserID(t *testing.T, env handlerTestEnv, email string) uint64 {
	t.Helper()

	var user models.User
	require.NoError(t, env.db.Where("email = ?", email).First(&user).Error)
	return user.ID
}

func TestUserHandler_RequiresAuth(t *testing.T) {
	env := setupHandlerTestEnv(t)

	for _, path := range []string{"/api/users", "/api/users/count", "/api/users/leaderboard", "/api/users/1"} {
		w := doJSON(t, env, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestUserHandler_CreateUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := registerViaAPI(t, env, "alice@x.com", "pw12345678")

	w := doJSON(t, env, http.MethodPost, "/api/users", alice.Token, map[string]string{
		"name":     "Bob",
		"lastname": "Builder",
		"email":    "Bob@X.com",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.Equal(t, "bob@x.com", user.Email)
	require.True(t, user.Active)
	// Creation returns the record only; no token is issued.
	require.NotContains(t, w.Body.String(), "token")

	w = doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "bob@x.com",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_CreateUserDuplicateEmail(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := registerViaAPI(t, env, "alice@x.com", "pw12345678")

	w := doJSON(t, env, http.MethodPost, "/api/users", alice.Token, map[string]string{
		"name":     "Alice",
		"lastname": "Again",
		"email":    "ALICE@x.com",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ALREADY_EXISTS")
}

func TestUserHandler_GetUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := registerViaAPI(t, env, "alice@x.com", "pw12345678")
	aliceID := lookupUserID(t, env, "alice@x.com")

	w := doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.Equal(t, "alice@x.com", user.Email)
	require.True(t, user.Active)

	w = doJSON(t, env, http.MethodGet, "/api/users/999999", alice.Token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_ChangePassword(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := registerViaAPI(t, env, "alice@x.com", "pw12345678")
	aliceID := lookupUserID(t, env, "alice@x.com")
	path := fmt.Sprintf("/api/users/%d/password", aliceID)

	w := doJSON(t, env, http.MethodPatch, path, alice.Token, map[string]string{
		"old_password": "wrong-current",
		"new_password": "newpw12345678",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_PASSWORD")

	w = doJSON(t, env, http.MethodPatch, path, alice.Token, map[string]string{
		"old_password": "pw12345678",
		"new_password": "newpw12345678",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "newpw12345678",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_DeactivateBlocksTokenAndLogin(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := registerViaAPI(t, env, "alice@x.com", "pw12345678")
	bob := registerViaAPI(t, env, "bob@x.com", "pw12345678")
	aliceID := lookupUserID(t, env, "alice@x.com")

	w := doJSON(t, env, http.MethodPatch, fmt.Sprintf("/api/users/%d/deactivate", aliceID), bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Alice's still-unexpired token now resolves to anonymous.
	w = doJSON(t, env, http.MethodGet, "/api/auth/me", alice.Token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "ACCOUNT_DISABLED")

	// Reactivation restores both paths.
	w = doJSON(t, env, http.MethodPatch, fmt.Sprintf("/api/users/%d/activate", aliceID), bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodGet, "/api/auth/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_DeleteUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := registerViaAPI(t, env, "alice@x.com", "pw12345678")
	bob := registerViaAPI(t, env, "bob@x.com", "pw12345678")
	aliceID := lookupUserID(t, env, "alice@x.com")

	w := doJSON(t, env, http.MethodPost, "/api/tasks", alice.Token, map[string]string{"title": "T1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, env, http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), bob.Token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	var users int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", aliceID).Count(&users).Error)
	require.Zero(t, users)

	var tasks int64
	require.NoError(t, env.db.Model(&models.Task{}).Where("user_id = ?", aliceID).Count(&tasks).Error)
	require.Zero(t, tasks)
}

func TestUserHandler_Leaderboard(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := registerViaAPI(t, env, "alice@x.com", "pw12345678")
	bob := registerViaAPI(t, env, "bob@x.com", "pw12345678")

	for i := 0; i < 2; i++ {
		w := doJSON(t, env, http.MethodPost, "/api/tasks", alice.Token, map[string]string{
			"title":  "done task",
			"status": "DONE",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := doJSON(t, env, http.MethodPost, "/api/tasks", bob.Token, map[string]string{
		"title": "pending task",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, env, http.MethodGet, "/api/users/leaderboard", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []dto.LeaderboardEntryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	require.Equal(t, "alice@x.com", entries[0].Email)
	require.EqualValues(t, 2, entries[0].Points)
	require.EqualValues(t, 2, entries[0].DoneTasks)
	require.Equal(t, "bob@x.com", entries[1].Email)
	require.EqualValues(t, 0, entries[1].Points)
	require.EqualValues(t, 1, entries[1].PendingTasks)
}
