package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caroltfg2024/unitasks-backend/internal/auth"
	"github.com/caroltfg2024/unitasks-backend/internal/models"
	"github.com/caroltfg2024/unitasks-backend/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type middlewareTestEnv struct {
	router *gin.Engine
	codec  *auth.TokenCodec
	db     *gorm.DB
}

func setupMiddlewareTestEnv(t *testing.T) middlewareTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := auth.NewTokenCodec([]byte("test-secret-key-0123"), time.Hour)
	userRepo := repository.NewUserRepository(db)

	r := gin.New()
	r.Use(Authenticate(codec, userRepo, log))
	r.GET("/whoami", func(c *gin.Context) {
		principal, exists := GetPrincipal(c)
		if !exists {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": false, "email": principal.Email})
	})
	r.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return middlewareTestEnv{router: r, codec: codec, db: db}
}

func createMiddlewareUser(t *testing.T, db *gorm.DB, email string, active bool) *models.User {
	t.Helper()

	digest, err := bcrypt.GenerateFromPassword([]byte("pw12345678"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:         "Test",
		Lastname:     "User",
		Email:        email,
		PasswordHash: string(digest),
		Active:       active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func whoami(t *testing.T, env middlewareTestEnv, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_ValidToken(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	createMiddlewareUser(t, env.db, "alice@x.com", true)

	token, err := env.codec.Issue("alice@x.com")
	require.NoError(t, err)

	w := whoami(t, env, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"anonymous":false`)
	require.Contains(t, w.Body.String(), "alice@x.com")
}

func TestAuthenticate_AnonymousFallthrough(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	createMiddlewareUser(t, env.db, "alice@x.com", true)

	token, err := env.codec.Issue("alice@x.com")
	require.NoError(t, err)

	otherCodec := auth.NewTokenCodec([]byte("another-secret-key-x"), time.Hour)
	forged, err := otherCodec.Issue("alice@x.com")
	require.NoError(t, err)

	expiredCodec := auth.NewTokenCodec([]byte("test-secret-key-0123"), -time.Minute)
	expired, err := expiredCodec.Issue("alice@x.com")
	require.NoError(t, err)

	unknownSubject, err := env.codec.Issue("ghost@x.com")
	require.NoError(t, err)

	cases := map[string]string{
		"no header":       "",
		"wrong prefix":    "Token " + token,
		"lowercase":       "bearer " + token,
		"garbage":         "Bearer not-a-token",
		"forged":          "Bearer " + forged,
		"expired":         "Bearer " + expired,
		"unknown subject": "Bearer " + unknownSubject,
	}

	// Every failure mode degrades to anonymous with a 200; the failure
	// reason never reaches the client.
	for name, header := range cases {
		w := whoami(t, env, header)
		require.Equal(t, http.StatusOK, w.Code, name)
		require.Contains(t, w.Body.String(), `"anonymous":true`, name)
	}
}

func TestAuthenticate_DisabledAccountTokenRejected(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	user := createMiddlewareUser(t, env.db, "alice@x.com", true)

	token, err := env.codec.Issue("alice@x.com")
	require.NoError(t, err)

	w := whoami(t, env, "Bearer "+token)
	require.Contains(t, w.Body.String(), `"anonymous":false`)

	// Deactivation takes effect on the very next request even though the
	// token itself is still unexpired.
	user.Active = false
	require.NoError(t, env.db.Save(user).Error)

	w = whoami(t, env, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"anonymous":true`)
}

func TestRequireAuth(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	createMiddlewareUser(t, env.db, "alice@x.com", true)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := env.codec.Issue("alice@x.com")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
