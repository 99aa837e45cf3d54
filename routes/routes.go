package routes

import (
	"fmt"
	"net/http"
	"time"

	"instaclone/handlers"
	"instaclone/logger"
	"instaclone/middleware"
	"instaclone/web"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Options struct {
	ServiceName string
	CORSOrigins []string
	// StaticDir holds uploaded images, served under /static.
	StaticDir string
	// Limiter throttles the login and registration forms. Nil disables it.
	Limiter *middleware.IPRateLimiter
	Sentry  bool

	// AuthTimeout bounds the user lookup behind the token cookie.
	AuthTimeout time.Duration
}

func SetupRouter(h *handlers.Handler, auth middleware.Authenticator, opts Options) (*gin.Engine, error) {
	router := gin.New()
	router.Use(logger.GinLogger(), logger.GinRecovery())
	if opts.Sentry {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(otelgin.Middleware(opts.ServiceName))

	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/static/"})))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	router.StaticFS("/assets", http.FS(web.Assets()))
	if opts.StaticDir != "" {
		router.Static("/static", opts.StaticDir)
	}

	router.GET("/health", h.Health)

	limited := func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		limited = middleware.RateLimit(opts.Limiter)
	}

	public := router.Group("/")
	public.Use(middleware.OptionalUser(auth, opts.AuthTimeout))
	public.GET("/", h.Index)
	public.GET("/register", h.RegisterForm)
	public.POST("/register", limited, h.Register)
	public.GET("/login", h.LoginForm)
	public.POST("/login", limited, h.Login)
	public.GET("/logout", h.Logout)

	protected := router.Group("/")
	protected.Use(middleware.RequireUser(auth, opts.AuthTimeout))

	// Profiles
	protected.GET("/profile/", h.MyProfile)
	protected.GET("/profile/:user_id", h.Profile)
	protected.POST("/follow/:user_id", h.Follow)
	protected.GET("/search_users", h.SearchUsers)

	// Posts
	protected.GET("/create_post", h.CreatePostForm)
	protected.POST("/create_post", h.CreatePost)
	protected.GET("/feed", h.Feed)
	protected.GET("/posts/", h.ListPosts)
	protected.GET("/posts/:post_id", h.PostDetail)
	protected.GET("/search_posts", h.SearchPosts)

	// Likes and comments
	protected.POST("/like/:post_id", h.Like)
	protected.POST("/comment/:post_id", h.Comment)
	protected.GET("/posts/:post_id/likes", h.PostLikes)
	protected.GET("/posts/:post_id/comments", h.PostComments)

	router.NoRoute(middleware.OptionalUser(auth, opts.AuthTimeout), h.NotFound)

	return router, nil
}
