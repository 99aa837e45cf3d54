package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text      string             `bson:"text" json:"text"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	PostID    primitive.ObjectID `bson:"post_id" json:"postId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// CommentView pairs a comment with its author's username.
type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	Text      string             `json:"text"`
	Username  string             `json:"username"`
	UserID    primitive.ObjectID `json:"userId"`
	CreatedAt time.Time          `json:"createdAt"`
}
