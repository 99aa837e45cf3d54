package database

import (
	"context"
	"regexp"

	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	txn    bool
}

// NewUserStore returns a store over coll. When txn is set, follow changes
// run inside a multi-document transaction on client.
func NewUserStore(client *mongo.Client, coll *mongo.Collection, txn bool) *UserStore {
	return &UserStore{client: client, coll: coll, txn: txn}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	_, err := s.coll.InsertOne(ctx, u)
	return translate(err)
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"username": 1}))
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Search matches q literally and case-insensitively anywhere in the
// username. Results are ordered by username.
func (s *UserStore) Search(ctx context.Context, q string, page models.Page) ([]models.User, int64, error) {
	filter := searchFilter(q)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := findPage(page.Skip, page.Limit).
		SetSort(bson.D{{Key: "username", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"username": 1})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func searchFilter(q string) bson.M {
	return bson.M{"username": primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}}
}

// SetFollow makes actor follow (or stop following) target, updating both
// sides of the relation.
func (s *UserStore) SetFollow(ctx context.Context, actor, target primitive.ObjectID, follow bool) error {
	if !s.txn {
		return s.applyFollow(ctx, actor, target, follow)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, s.applyFollow(sc, actor, target, follow)
	})
	return err
}

// applyFollow issues the two idempotent updates. Outside a transaction a
// concurrent toggle between them can leave the two sides briefly out of
// step.
func (s *UserStore) applyFollow(ctx context.Context, actor, target primitive.ObjectID, follow bool) error {
	op := "$pull"
	if follow {
		op = "$addToSet"
	}
	if _, err := s.coll.UpdateByID(ctx, actor, bson.M{op: bson.M{"following": target}}); err != nil {
		return err
	}
	_, err := s.coll.UpdateByID(ctx, target, bson.M{op: bson.M{"followers": actor}})
	return err
}
