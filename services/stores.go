package services

import (
	"context"
	"io"
	"time"

	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stores report models.ErrNotFound for missing documents and
// models.ErrDuplicate for unique index violations.

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Search(ctx context.Context, q string, page models.Page) ([]models.User, int64, error)
	SetFollow(ctx context.Context, actor, target primitive.ObjectID, follow bool) error
}

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, f models.PostFilter, page models.Page) ([]models.Post, int64, error)
}

type LikeStore interface {
	// Toggle reports whether the post is liked by the user afterwards.
	Toggle(ctx context.Context, userID, postID primitive.ObjectID) (bool, error)
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID, page models.Page) ([]models.Like, int64, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID, page models.Page) ([]models.Comment, int64, error)
}

// ImageStore persists uploaded images and returns the URL they are served
// from.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// TokenDenylist remembers revoked token ids until they would have expired
// anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
