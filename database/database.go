package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instaclone/config"
	"instaclone/logger"
	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	connectAttempts = 3
	connectBackoff  = 2 * time.Second
)

// DB holds the client and the application's collections.
type DB struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Posts    *mongo.Collection
	Likes    *mongo.Collection
	Comments *mongo.Collection

	// Transactions is set by Connect when the deployment is a replica set
	// or a sharded cluster.
	Transactions bool
}

// Connect dials MongoDB, retrying a few times before giving up, and pings
// the primary.
func Connect(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	var (
		client *mongo.Client
		err    error
	)
	for i := 1; i <= connectAttempts; i++ {
		client, err = dial(ctx, opts, cfg.Timeout)
		if err == nil {
			break
		}
		logger.Warn("mongo connection attempt failed", zap.Int("attempt", i), zap.Error(err))
		if i < connectAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectBackoff):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	db := New(client, cfg.Database)
	db.Transactions = probeTransactions(ctx, client, cfg.Timeout)
	logger.Info("connected to mongo",
		zap.String("database", cfg.Database),
		zap.Bool("transactions", db.Transactions),
	)
	return db, nil
}

func dial(ctx context.Context, opts *options.ClientOptions, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// New binds the collections of database name on an existing client.
func New(client *mongo.Client, name string) *DB {
	db := client.Database(name)
	return &DB{
		Client:   client,
		Users:    db.Collection("users"),
		Posts:    db.Collection("posts"),
		Likes:    db.Collection("likes"),
		Comments: db.Collection("comments"),
	}
}

// probeTransactions asks the server for its topology. Multi-document
// transactions need a replica set member or a mongos router.
func probeTransactions(ctx context.Context, client *mongo.Client, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var hello bson.M
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		logger.Warn("mongo hello failed, assuming standalone", zap.Error(err))
		return false
	}
	return supportsTransactions(hello)
}

func supportsTransactions(hello bson.M) bool {
	if _, ok := hello["setName"]; ok {
		return true
	}
	msg, _ := hello["msg"].(string)
	return msg == "isdbgrid"
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

func (db *DB) Disconnect(ctx context.Context) error {
	if db == nil || db.Client == nil {
		return nil
	}
	if err := db.Client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Info("disconnected from mongo")
	return nil
}

// EnsureIndexes creates the indexes the queries and uniqueness rules rely
// on. Creating an index that already exists is a no-op.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	specs := map[*mongo.Collection][]mongo.IndexModel{
		db.Users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		db.Posts: {
			{Keys: bson.D{{Key: "hashtags", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		db.Likes: {
			{Keys: bson.D{{Key: "post_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		db.Comments: {
			{Keys: bson.D{{Key: "post_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	default:
		return err
	}
}

func findPage(skip, limit int) *options.FindOptions {
	return options.Find().SetSkip(int64(skip)).SetLimit(int64(limit))
}
