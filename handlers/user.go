package handlers

import (
	"net/http"
	"strings"

	"instaclone/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) MyProfile(c *gin.Context) {
	redirect(c, "/profile/"+middleware.CurrentUser(c).ID.Hex())
}

func (h *Handler) Profile(c *gin.Context) {
	page, ok := h.page(c)
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.users.Profile(ctx, middleware.CurrentUser(c), c.Param("user_id"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "profile.html", gin.H{
		"Title":   profile.User.Username,
		"Profile": profile,
		"Posts":   profile.Posts,
		"Pager":   pager(c, profile.Posts.Pagination),
	})
}

// Follow toggles following the user in the path.
func (h *Handler) Follow(c *gin.Context) {
	target := c.Param("user_id")

	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.users.ToggleFollow(ctx, middleware.CurrentUser(c), target); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/profile/"+target)
}

// SearchUsers shows the search form, and results once q is given.
func (h *Handler) SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	data := gin.H{"Title": "Find people", "Query": q, "Users": nil}
	if q == "" {
		h.render(c, http.StatusOK, "search_users.html", data)
		return
	}

	page, ok := h.page(c)
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.users.SearchUsers(ctx, q, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	data["Users"] = &res
	data["Pager"] = pager(c, res.Pagination)
	h.render(c, http.StatusOK, "search_users.html", data)
}
