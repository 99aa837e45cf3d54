package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Caption   string             `bson:"caption" json:"caption"`
	ImageURL  string             `bson:"image_url" json:"imageUrl"`
	Category  string             `bson:"category" json:"category"`
	Hashtags  []string           `bson:"hashtags" json:"hashtags"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// PostView is a post annotated for rendering. The counts are computed per
// request and never stored.
type PostView struct {
	Post
	Username      string `json:"username"`
	LikesCount    int64  `json:"likesCount"`
	CommentsCount int64  `json:"commentsCount"`
}

// PostFilter selects posts for a listing. Zero-valued fields do not filter.
type PostFilter struct {
	UserIDs  []primitive.ObjectID
	Hashtag  string
	Category string
	From     *time.Time
	To       *time.Time
}

// Empty reports whether f would match every post.
func (f PostFilter) Empty() bool {
	return len(f.UserIDs) == 0 && f.Hashtag == "" && f.Category == "" && f.From == nil && f.To == nil
}
