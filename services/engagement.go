package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"instaclone/logger"
	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgPostNotFound = "Post not found."

type LikeResult int

const (
	Liked LikeResult = iota + 1
	Unliked
)

type CommentInput struct {
	Text string `label:"Comment" validate:"required,max=500"`
}

// LikesPage lists the users who liked a post.
type LikesPage struct {
	Post   *models.Post
	Likers models.Paginated[models.UserSummary]
}

type CommentsPage struct {
	Post     *models.Post
	Comments models.Paginated[models.CommentView]
}

type EngagementService struct {
	posts    PostStore
	users    UserStore
	likes    LikeStore
	comments CommentStore
	now      func() time.Time
}

func NewEngagementService(posts PostStore, users UserStore, likes LikeStore, comments CommentStore) *EngagementService {
	return &EngagementService{posts: posts, users: users, likes: likes, comments: comments, now: time.Now}
}

func (s *EngagementService) ToggleLike(ctx context.Context, u *models.User, postID string) (LikeResult, error) {
	p, err := s.post(ctx, postID)
	if err != nil {
		return 0, err
	}
	liked, err := s.likes.Toggle(ctx, u.ID, p.ID)
	if err != nil {
		return 0, internal("toggle like", err)
	}
	if liked {
		logger.Info("post liked", zap.String("username", u.Username), zap.String("post_id", p.ID.Hex()))
		return Liked, nil
	}
	logger.Info("post unliked", zap.String("username", u.Username), zap.String("post_id", p.ID.Hex()))
	return Unliked, nil
}

func (s *EngagementService) AddComment(ctx context.Context, u *models.User, postID string, in CommentInput) (*models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := check(in); err != nil {
		return nil, err
	}
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		Text:      in.Text,
		UserID:    u.ID,
		PostID:    p.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, internal("create comment", err)
	}
	logger.Info("comment added", zap.String("username", u.Username), zap.String("post_id", p.ID.Hex()))
	return c, nil
}

// ListLikes lists likers newest first.
func (s *EngagementService) ListLikes(ctx context.Context, postID string, page models.Page) (*LikesPage, error) {
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	likes, total, err := s.likes.ListByPost(ctx, p.ID, page)
	if err != nil {
		return nil, internal("list likes", err)
	}

	ids := make([]primitive.ObjectID, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.UserID)
	}
	names, err := resolveUsernames(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	likers := make([]models.UserSummary, 0, len(likes))
	for _, l := range likes {
		likers = append(likers, models.UserSummary{ID: l.UserID, Username: lookupName(names, l.UserID)})
	}
	return &LikesPage{Post: p, Likers: models.NewPaginated(likers, page, total)}, nil
}

// ListComments lists comments newest first with their authors' usernames.
func (s *EngagementService) ListComments(ctx context.Context, postID string, page models.Page) (*CommentsPage, error) {
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentViews(ctx, p.ID, page)
	if err != nil {
		return nil, err
	}
	return &CommentsPage{Post: p, Comments: comments}, nil
}

func (s *EngagementService) commentViews(ctx context.Context, postID primitive.ObjectID, page models.Page) (models.Paginated[models.CommentView], error) {
	list, total, err := s.comments.ListByPost(ctx, postID, page)
	if err != nil {
		return models.Paginated[models.CommentView]{}, internal("list comments", err)
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.UserID)
	}
	names, err := resolveUsernames(ctx, s.users, ids)
	if err != nil {
		return models.Paginated[models.CommentView]{}, err
	}

	views := make([]models.CommentView, 0, len(list))
	for _, c := range list {
		views = append(views, models.CommentView{
			ID:        c.ID,
			Text:      c.Text,
			Username:  lookupName(names, c.UserID),
			UserID:    c.UserID,
			CreatedAt: c.CreatedAt,
		})
	}
	return models.NewPaginated(views, page, total), nil
}

func (s *EngagementService) post(ctx context.Context, postID string) (*models.Post, error) {
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
	return p, nil
}
