package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	PostID    primitive.ObjectID `bson:"post_id" json:"postId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
