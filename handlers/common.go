package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"instaclone/middleware"
	"instaclone/models"
	"instaclone/services"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Posts        *services.PostService
	Engagement   *services.EngagementService
	Feed         *services.FeedService
	DB           Pinger
	Paging       services.Paging
	CookieSecure bool
	// Timeout bounds the store calls of one request.
	Timeout time.Duration
}

// Handler serves the HTML pages.
type Handler struct {
	auth         *services.AuthService
	users        *services.UserService
	posts        *services.PostService
	engagement   *services.EngagementService
	feed         *services.FeedService
	db           Pinger
	paging       services.Paging
	cookieSecure bool
	timeout      time.Duration
}

func New(d Deps) *Handler {
	return &Handler{
		auth:         d.Auth,
		users:        d.Users,
		posts:        d.Posts,
		engagement:   d.Engagement,
		feed:         d.Feed,
		db:           d.DB,
		paging:       d.Paging,
		cookieSecure: d.CookieSecure,
		timeout:      d.Timeout,
	}
}

func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// render executes a page template. Title, Error and CurrentUser are always
// present in the template data.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	for _, k := range []string{"Title", "Error"} {
		if _, ok := data[k]; !ok {
			data[k] = ""
		}
	}
	data["CurrentUser"] = middleware.CurrentUser(c)
	c.HTML(status, name, data)
}

func (h *Handler) page(c *gin.Context) (models.Page, bool) {
	p, err := h.paging.Page(c.Query("skip"), c.Query("limit"))
	if err != nil {
		h.fail(c, err)
		return models.Page{}, false
	}
	return p, true
}

// Pager carries pagination state plus links to the neighbouring pages.
type Pager struct {
	models.Pagination
	PrevURL string
	NextURL string
}

func pager(c *gin.Context, p models.Pagination) Pager {
	link := func(skip int) string {
		q := url.Values{}
		for k, v := range c.Request.URL.Query() {
			q[k] = v
		}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(p.Limit))
		return c.Request.URL.Path + "?" + q.Encode()
	}
	return Pager{Pagination: p, PrevURL: link(p.PrevSkip), NextURL: link(p.NextSkip)}
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// Health pings the database.
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	c.String(http.StatusOK, "OK")
}

func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.html", gin.H{
		"Title":  "Not found",
		"Status": http.StatusNotFound,
		"Error":  "Page not found.",
	})
}
