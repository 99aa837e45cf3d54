package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"instaclone/models"
	"instaclone/services"
	"instaclone/testutils"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	m.Run()
}

type fakeAuth struct {
	user *models.User
	err  error
	// seen receives the context of each lookup when set.
	seen func(context.Context)
}

func (f fakeAuth) CurrentUser(ctx context.Context, _ string) (*models.User, error) {
	if f.seen != nil {
		f.seen(ctx)
	}
	return f.user, f.err
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	r := testutils.SetupTestRouter()
	r.GET("/private", mw, func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireUser(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}

	t.Run("valid token", func(t *testing.T) {
		w := get(authRouter(RequireUser(fakeAuth{user: alice}, 0)), "good")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
	})

	t.Run("no cookie", func(t *testing.T) {
		w := get(authRouter(RequireUser(fakeAuth{user: alice}, 0)), "")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("invalid token clears cookie", func(t *testing.T) {
		w := get(authRouter(RequireUser(fakeAuth{err: services.ErrUnauthenticated}, 0)), "stale")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.True(t, cookies[0].MaxAge < 0)
	})

	t.Run("store failure", func(t *testing.T) {
		w := get(authRouter(RequireUser(fakeAuth{err: errors.New("mongo down")}, 0)), "good")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequireUser_LookupTimeout(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}

	var deadline time.Time
	var hasDeadline bool
	auth := fakeAuth{user: alice, seen: func(ctx context.Context) {
		deadline, hasDeadline = ctx.Deadline()
	}}

	w := get(authRouter(RequireUser(auth, 3*time.Second)), "good")
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(3*time.Second), deadline, time.Second)

	hasDeadline = false
	get(authRouter(OptionalUser(auth, 0)), "good")
	assert.False(t, hasDeadline)
}

func TestRequireUser_ReportsStoreFailure(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, e)
			return nil
		},
	})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())

	r := testutils.SetupTestRouter()
	r.Use(sentrygin.New(sentrygin.Options{}))
	r.GET("/private", RequireUser(fakeAuth{err: errors.New("mongo down")}, time.Second), func(c *gin.Context) {
		c.String(http.StatusOK, "unreachable")
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req = req.WithContext(sentry.SetHubOnContext(req.Context(), hub))
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, events, 1)
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "mongo down", events[0].Exception[0].Value)
}

func TestOptionalUser(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}

	w := get(authRouter(OptionalUser(fakeAuth{user: alice}, 0)), "good")
	assert.Equal(t, "alice", w.Body.String())

	w = get(authRouter(OptionalUser(fakeAuth{err: services.ErrUnauthenticated}, 0)), "bad")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestSetTokenCookie(t *testing.T) {
	r := testutils.SetupTestRouter()
	r.GET("/login", func(c *gin.Context) {
		SetTokenCookie(c, "abc", 3600, true)
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "abc", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(1, 2)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "buckets are per ip")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"), "bucket refills")

	now = now.Add(2 * limiterIdleTTL)
	rl.Allow("3.3.3.3")
	assert.Equal(t, 1, rl.size(), "idle buckets are swept")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := testutils.SetupTestRouter()
	r.POST("/login", RateLimit(NewIPRateLimiter(0.001, 1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
