package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"instaclone/logger"
	"instaclone/middleware"
	"instaclone/models"
	"instaclone/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePostForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create_post.html", gin.H{"Title": "New post", "Caption": "", "Category": ""})
}

func (h *Handler) CreatePost(c *gin.Context) {
	in := services.CreatePostInput{
		Caption:  c.PostForm("caption"),
		Category: c.PostForm("category"),
	}
	form := gin.H{"Title": "New post", "Caption": in.Caption, "Category": in.Category}

	var (
		image    io.Reader
		filename string
	)
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			h.fail(c, err)
			return
		}
		defer f.Close()
		image, filename = f, fh.Filename
	case errors.Is(err, http.ErrMissingFile):
		logger.Debug("create post without image")
	default:
		h.fail(c, &services.Error{Kind: services.KindValidation, Message: "Could not read the uploaded image.", Err: err})
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if _, err := h.posts.CreatePost(ctx, middleware.CurrentUser(c), in, image, filename); err != nil {
		h.failForm(c, "create_post.html", form, err)
		return
	}
	redirect(c, "/feed")
}

func (h *Handler) Feed(c *gin.Context) {
	h.listing(c, "feed.html", "Feed", func(ctx context.Context, page models.Page) (models.Paginated[models.PostView], error) {
		return h.feed.Feed(ctx, middleware.CurrentUser(c), page)
	})
}

func (h *Handler) ListPosts(c *gin.Context) {
	h.listing(c, "list_posts.html", "All posts", h.feed.ListAllPosts)
}

func (h *Handler) listing(c *gin.Context, name, title string, list func(context.Context, models.Page) (models.Paginated[models.PostView], error)) {
	page, ok := h.page(c)
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := list(ctx, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, name, gin.H{
		"Title": title,
		"Posts": res,
		"Pager": pager(c, res.Pagination),
	})
}

func (h *Handler) PostDetail(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	detail, err := h.posts.GetPost(ctx, c.Param("post_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "post_detail.html", gin.H{"Title": "Post", "Detail": detail})
}

// SearchPosts shows the search form, and results once any criterion is
// given.
func (h *Handler) SearchPosts(c *gin.Context) {
	search := services.PostSearch{
		Hashtag:   c.Query("hashtag"),
		Category:  c.Query("category"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	data := gin.H{"Title": "Search posts", "Search": search, "Posts": nil}

	filter, err := search.Filter()
	if err != nil {
		h.fail(c, err)
		return
	}
	if filter.Empty() {
		h.render(c, http.StatusOK, "search_posts.html", data)
		return
	}

	page, ok := h.page(c)
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.feed.SearchPosts(ctx, filter, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	data["Posts"] = &res
	data["Pager"] = pager(c, res.Pagination)
	h.render(c, http.StatusOK, "search_posts.html", data)
}
