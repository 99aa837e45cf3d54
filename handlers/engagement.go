package handlers

import (
	"net/http"

	"instaclone/middleware"
	"instaclone/services"

	"github.com/gin-gonic/gin"
)

// Like toggles the current user's like and returns to the post.
func (h *Handler) Like(c *gin.Context) {
	postID := c.Param("post_id")

	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.engagement.ToggleLike(ctx, middleware.CurrentUser(c), postID); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/posts/"+postID)
}

func (h *Handler) Comment(c *gin.Context) {
	postID := c.Param("post_id")

	ctx, cancel := h.ctx(c)
	defer cancel()

	in := services.CommentInput{Text: c.PostForm("text")}
	if _, err := h.engagement.AddComment(ctx, middleware.CurrentUser(c), postID, in); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, "/posts/"+postID)
}

func (h *Handler) PostLikes(c *gin.Context) {
	page, ok := h.page(c)
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.engagement.ListLikes(ctx, c.Param("post_id"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "post_likes.html", gin.H{
		"Title":  "Likes",
		"Post":   res.Post,
		"Likers": res.Likers,
		"Pager":  pager(c, res.Likers.Pagination),
	})
}

func (h *Handler) PostComments(c *gin.Context) {
	page, ok := h.page(c)
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.engagement.ListComments(ctx, c.Param("post_id"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "post_comments.html", gin.H{
		"Title":    "Comments",
		"Post":     res.Post,
		"Comments": res.Comments,
		"Pager":    pager(c, res.Comments.Pagination),
	})
}
