package handlers

import (
	"net/http"

	"instaclone/logger"
	"instaclone/middleware"
	"instaclone/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

func (h *Handler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Username": "", "Email": ""})
}

func (h *Handler) Register(c *gin.Context) {
	in := services.RegisterInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.users.Register(ctx, in); err != nil {
		h.failForm(c, "register.html", gin.H{"Title": "Register", "Username": in.Username, "Email": in.Email}, err)
		return
	}
	redirect(c, "/login")
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Username": ""})
}

func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")

	ctx, cancel := h.ctx(c)
	defer cancel()

	token, err := h.users.Login(ctx, username, c.PostForm("password"))
	if err != nil {
		h.failForm(c, "login.html", gin.H{"Title": "Log in", "Username": username}, err)
		return
	}

	middleware.SetTokenCookie(c, token, int(h.auth.TTL().Seconds()), h.cookieSecure)
	redirect(c, "/feed")
}

// Logout drops the cookie and revokes its token. A failed revocation is
// logged and does not keep the user logged in.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.CookieName); err == nil && token != "" {
		ctx, cancel := h.ctx(c)
		defer cancel()
		if err := h.auth.Revoke(ctx, token); err != nil {
			logger.Warn("token revocation failed", zap.Error(err))
		}
	}
	middleware.ClearTokenCookie(c)
	logger.Info("user logged out")
	redirect(c, "/")
}
