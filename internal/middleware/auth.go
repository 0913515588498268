package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/caroltfg2024/unitasks-backend/internal/auth"
	"github.com/caroltfg2024/unitasks-backend/internal/constants"
	apierrors "github.com/caroltfg2024/unitasks-backend/internal/errors"
	"github.com/caroltfg2024/unitasks-backend/internal/repository"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const bearerPrefix = "Bearer "

// Authenticate resolves the request's identity from the Authorization
// header. Any failure (missing header, wrong prefix, invalid or expired
// token, unknown subject, disabled account) leaves the request anonymous
// and is logged only; a route that needs a principal rejects later via
// RequireAuth. Exactly one resolution attempt per request, no caching.
func Authenticate(codec *auth.TokenCodec, userRepo repository.UserRepository, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.Next()
			return
		}

		subject, err := codec.Verify(header[len(bearerPrefix):])
		if err != nil {
			log.Warn("token verification failed", "reason", err)
			c.Next()
			return
		}

		user, err := userRepo.FindByEmail(subject)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error("failed to load token subject", "error", err)
			}
			c.Next()
			return
		}

		// A token outlives deactivation; re-checking the flag here is what
		// keeps old tokens from resurrecting a disabled account.
		if !user.Active {
			log.Warn("token presented for disabled account", "user_id", user.ID)
			c.Next()
			return
		}

		c.Set(constants.ContextKeyPrincipal, auth.Principal{
			UserID: user.ID,
			Email:  user.Email,
		})
		c.Next()
	}
}

// RequireAuth aborts with 401 when the request carries no resolved principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetPrincipal(c); !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the resolved principal from the request context.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return auth.Principal{}, false
	}

	principal, ok := value.(auth.Principal)
	return principal, ok
}
