package database

import (
	"context"

	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CommentStore struct {
	coll *mongo.Collection
}

func NewCommentStore(coll *mongo.Collection) *CommentStore {
	return &CommentStore{coll: coll}
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, c)
	return translate(err)
}

func (s *CommentStore) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"post_id": postID})
}

func (s *CommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID, page models.Page) ([]models.Comment, int64, error) {
	filter := bson.M{"post_id": postID}
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := s.coll.Find(ctx, filter, findPage(page.Skip, page.Limit).SetSort(newestFirst))
	if err != nil {
		return nil, 0, err
	}
	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}
