package database

import (
	"context"
	"errors"
	"time"

	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LikeStore struct {
	coll *mongo.Collection
}

func NewLikeStore(coll *mongo.Collection) *LikeStore {
	return &LikeStore{coll: coll}
}

// Toggle removes the user's like on the post if there is one, otherwise
// adds it. It reports whether the post is liked afterwards. The unique
// (post_id, user_id) index keeps concurrent toggles from double-liking.
func (s *LikeStore) Toggle(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"post_id": postID, "user_id": userID})
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	_, err = s.coll.InsertOne(ctx, models.Like{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	})
	if err = translate(err); errors.Is(err, models.ErrDuplicate) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *LikeStore) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"post_id": postID})
}

func (s *LikeStore) ListByPost(ctx context.Context, postID primitive.ObjectID, page models.Page) ([]models.Like, int64, error) {
	filter := bson.M{"post_id": postID}
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := s.coll.Find(ctx, filter, findPage(page.Skip, page.Limit).SetSort(newestFirst))
	if err != nil {
		return nil, 0, err
	}
	var likes []models.Like
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, 0, err
	}
	return likes, total, nil
}
