package database

import (
	"context"

	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(coll *mongo.Collection) *PostStore {
	return &PostStore{coll: coll}
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	_, err := s.coll.InsertOne(ctx, p)
	return translate(err)
}

func (s *PostStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List returns one page of posts matching f, newest first, and the number
// of posts matching f overall.
func (s *PostStore) List(ctx context.Context, f models.PostFilter, page models.Page) ([]models.Post, int64, error) {
	filter := postQuery(f)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.coll.Find(ctx, filter, findPage(page.Skip, page.Limit).SetSort(newestFirst))
	if err != nil {
		return nil, 0, err
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func postQuery(f models.PostFilter) bson.M {
	q := bson.M{}
	if len(f.UserIDs) > 0 {
		q["user_id"] = bson.M{"$in": f.UserIDs}
	}
	if f.Hashtag != "" {
		q["hashtags"] = f.Hashtag
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.From != nil || f.To != nil {
		r := bson.M{}
		if f.From != nil {
			r["$gte"] = *f.From
		}
		if f.To != nil {
			r["$lte"] = *f.To
		}
		q["created_at"] = r
	}
	return q
}
