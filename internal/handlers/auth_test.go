package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caroltfg2024/unitasks-backend/internal/auth"
	"github.com/caroltfg2024/unitasks-backend/internal/dto"
	"github.com/caroltfg2024/unitasks-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type handlerTestEnv struct {
	router *gin.Engine
	db     *gorm.DB
	codec  *auth.TokenCodec
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	codec := auth.NewTokenCodec([]byte("test-secret-key-0123"), time.Hour)

	return handlerTestEnv{
		router: NewRouter(db, hasher, codec, log),
		db:     db,
		codec:  codec,
	}
}

func doJSON(t *testing.T, env handlerTestEnv, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func registerViaAPI(t *testing.T, env handlerTestEnv, email, password string) dto.AuthResponse {
	t.Helper()

	w := doJSON(t, env, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Test",
		"lastname": "User",
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupHandlerTestEnv(t)

	response := registerViaAPI(t, env, "alice@x.com", "pw12345678")
	require.Equal(t, "alice@x.com", response.Email)
	require.Equal(t, "Test", response.Name)
	require.NotEmpty(t, response.Token)

	subject, err := env.codec.Verify(response.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", subject)

	// The stored digest never leaves the server.
	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@x.com").First(&user).Error)
	require.NotEmpty(t, user.PasswordHash)

	raw, err := json.Marshal(response)
	require.NoError(t, err)
	require.NotContains(t, string(raw), user.PasswordHash)
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	env := setupHandlerTestEnv(t)
	registerViaAPI(t, env, "alice@x.com", "pw12345678")

	w := doJSON(t, env, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Other",
		"lastname": "User",
		"email":    "ALICE@x.com",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ALREADY_EXISTS")
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)
	registerViaAPI(t, env, "alice@x.com", "pw12345678")

	w := doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)

	subject, err := env.codec.Verify(response.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", subject)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := setupHandlerTestEnv(t)
	registerViaAPI(t, env, "alice@x.com", "pw12345678")

	wrongPassword := doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "not-the-password",
	})
	unknownEmail := doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "pw12345678",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// The two failure modes are byte-identical on the wire.
	require.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupHandlerTestEnv(t)
	registered := registerViaAPI(t, env, "alice@x.com", "pw12345678")

	w := doJSON(t, env, http.MethodGet, "/api/auth/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.Equal(t, "alice@x.com", user.Email)

	// No token means no principal, and /me requires one.
	w = doJSON(t, env, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
