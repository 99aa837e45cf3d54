package services

import (
	"context"

	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FeedService builds annotated post listings: each post with its author's
// username and live like and comment counts.
type FeedService struct {
	posts    PostStore
	users    UserStore
	likes    LikeStore
	comments CommentStore
	tracer   trace.Tracer
}

func NewFeedService(posts PostStore, users UserStore, likes LikeStore, comments CommentStore) *FeedService {
	return &FeedService{
		posts:    posts,
		users:    users,
		likes:    likes,
		comments: comments,
		tracer:   otel.Tracer("instaclone/services"),
	}
}

// Feed lists posts by the users u follows, or u's own posts when u follows
// nobody.
func (s *FeedService) Feed(ctx context.Context, u *models.User, page models.Page) (models.Paginated[models.PostView], error) {
	authors := u.Following
	if len(authors) == 0 {
		authors = []primitive.ObjectID{u.ID}
	}
	return s.list(ctx, models.PostFilter{UserIDs: authors}, page)
}

func (s *FeedService) ListAllPosts(ctx context.Context, page models.Page) (models.Paginated[models.PostView], error) {
	return s.list(ctx, models.PostFilter{}, page)
}

// SearchPosts requires at least one criterion in f.
func (s *FeedService) SearchPosts(ctx context.Context, f models.PostFilter, page models.Page) (models.Paginated[models.PostView], error) {
	if f.Empty() {
		return models.Paginated[models.PostView]{}, newError(KindValidation, "Provide a hashtag, category or date range to search.")
	}
	return s.list(ctx, f, page)
}

func (s *FeedService) ProfilePosts(ctx context.Context, userID primitive.ObjectID, page models.Page) (models.Paginated[models.PostView], error) {
	return s.list(ctx, models.PostFilter{UserIDs: []primitive.ObjectID{userID}}, page)
}

func (s *FeedService) list(ctx context.Context, f models.PostFilter, page models.Page) (models.Paginated[models.PostView], error) {
	posts, total, err := s.posts.List(ctx, f, page)
	if err != nil {
		return models.Paginated[models.PostView]{}, internal("list posts", err)
	}
	views, err := s.annotate(ctx, posts)
	if err != nil {
		return models.Paginated[models.PostView]{}, err
	}
	return models.NewPaginated(views, page, total), nil
}

// annotate resolves authors with one batched lookup, then counts likes
// and comments per post.
func (s *FeedService) annotate(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	ctx, span := s.tracer.Start(ctx, "feed.annotate", trace.WithAttributes(attribute.Int("posts.count", len(posts))))
	defer span.End()

	if len(posts) == 0 {
		return []models.PostView{}, nil
	}

	names, err := s.usernames(ctx, authorIDs(posts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve authors")
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		likes, err := s.likes.CountByPost(ctx, p.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "count likes")
			return nil, internal("count likes", err)
		}
		comments, err := s.comments.CountByPost(ctx, p.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "count comments")
			return nil, internal("count comments", err)
		}
		views = append(views, models.PostView{
			Post:          p,
			Username:      lookupName(names, p.UserID),
			LikesCount:    likes,
			CommentsCount: comments,
		})
	}
	return views, nil
}

// usernames maps each id to its username. Ids that no longer resolve are
// absent from the map.
func (s *FeedService) usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	return resolveUsernames(ctx, s.users, ids)
}

func resolveUsernames(ctx context.Context, users UserStore, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internal("resolve usernames", err)
	}
	for _, u := range found {
		names[u.ID] = u.Username
	}
	return names, nil
}

func lookupName(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return models.UnknownUsername
}

func authorIDs(posts []models.Post) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(posts))
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	return ids
}
