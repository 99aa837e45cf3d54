package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"instaclone/logger"
	"instaclone/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreatePostInput struct {
	Caption  string `label:"Caption" validate:"max=2200"`
	Category string `label:"Category" validate:"required,max=50"`
}

// PostDetail is a single post with its most recent comments.
type PostDetail struct {
	Post     models.PostView
	Comments []models.CommentView
}

// RecentComments is how many comments the post page shows inline.
const RecentComments = 5

type PostService struct {
	posts      PostStore
	images     ImageStore
	feed       *FeedService
	engagement *EngagementService
	now        func() time.Time
}

func NewPostService(posts PostStore, images ImageStore, feed *FeedService, engagement *EngagementService) *PostService {
	return &PostService{posts: posts, images: images, feed: feed, engagement: engagement, now: time.Now}
}

// CreatePost stores the image under a generated name and inserts the post.
// The image and the post are not written atomically.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, in CreatePostInput, image io.Reader, filename string) (*models.Post, error) {
	in.Category = strings.TrimSpace(in.Category)
	if err := check(in); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, newError(KindValidation, "Image is required.")
	}

	url, err := s.images.Save(ctx, imageName(filename), image)
	if err != nil {
		return nil, internal("save image", err)
	}

	p := &models.Post{
		UserID:    author.ID,
		Caption:   in.Caption,
		ImageURL:  url,
		Category:  in.Category,
		Hashtags:  NormalizeHashtags(ExtractHashtags(in.Caption)),
		CreatedAt: s.now().UTC(),
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, internal("create post", err)
	}

	logger.Info("post created",
		zap.String("username", author.Username),
		zap.String("post_id", p.ID.Hex()),
		zap.Strings("hashtags", p.Hashtags),
	)
	return p, nil
}

// imageName keeps only a short alphanumeric extension from the client's
// filename.
func imageName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !cleanExt(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

func cleanExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 8 {
		return false
	}
	for _, r := range ext[1:] {
		if !('a' <= r && r <= 'z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

// ExtractHashtags returns every whitespace-delimited token of caption that
// starts with '#', in order, duplicates included.
func ExtractHashtags(caption string) []string {
	var tags []string
	for _, tok := range strings.Fields(caption) {
		if strings.HasPrefix(tok, "#") {
			tags = append(tags, tok)
		}
	}
	return tags
}

// NormalizeHashtags lowercases tags and strips '#' from both ends. Tags
// left empty are dropped.
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = NormalizeHashtag(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func NormalizeHashtag(tag string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(tag)), "#")
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*PostDetail, error) {
	id, err := parseID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(KindNotFound, msgPostNotFound)
	}
	if err != nil {
		return nil, internal("load post", err)
	}

	views, err := s.feed.annotate(ctx, []models.Post{*p})
	if err != nil {
		return nil, err
	}
	comments, err := s.engagement.commentViews(ctx, p.ID, models.Page{Limit: RecentComments})
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: views[0], Comments: comments.Items}, nil
}
