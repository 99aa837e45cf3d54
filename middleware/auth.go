package middleware

import (
	"context"
	"net/http"
	"time"

	"instaclone/logger"
	"instaclone/models"
	"instaclone/services"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CookieName is the cookie carrying the access token.
	CookieName = "token"

	currentUserKey = "currentUser"
	loginPath      = "/login"
)

type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// RequireUser resolves the token cookie to a user. Requests without a
// valid token are redirected to the login page and lose the cookie.
func RequireUser(auth Authenticator, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolve(c, auth, timeout)
		if !ok {
			return
		}
		if user == nil {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalUser sets the current user when the request carries a valid
// token and lets every request through.
func OptionalUser(auth Authenticator, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolve(c, auth, timeout)
		if !ok {
			return
		}
		if user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// resolve returns the user for the request's token, or nil when there is
// none. It reports false after aborting the request on a store failure.
// A positive timeout bounds the lookup.
func resolve(c *gin.Context, auth Authenticator, timeout time.Duration) (*models.User, bool) {
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return nil, true
	}

	ctx := c.Request.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	user, err := auth.CurrentUser(ctx, token)
	if err == nil {
		return user, true
	}
	if services.KindOf(err) == services.KindUnauthenticated {
		logger.Debug("rejected access token", zap.String("path", c.Request.URL.Path), zap.Error(err))
		ClearTokenCookie(c)
		return nil, true
	}

	logger.Error("resolve current user", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	c.AbortWithStatus(http.StatusInternalServerError)
	return nil, false
}

// CurrentUser returns the user set by RequireUser or OptionalUser.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func SetTokenCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}

func ClearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}
