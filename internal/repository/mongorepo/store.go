// Package mongorepo implements the repository ports on MongoDB.
package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"salemre/backend/internal/db"
	"salemre/backend/internal/repository"
)

const (
	propertiesCollection = "properties"
	blogCollection       = "blog_posts"
	inquiriesCollection  = "inquiries"
	usersCollection      = "users"
	countersCollection   = "counters"
)

// Store implements repository.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	properties *PropertyRepository
	blog       *BlogRepository
	inquiries  *InquiryRepository
	users      *UserRepository
}

var _ repository.Store = (*Store)(nil)

// New wraps a connected database. client may be nil when the caller owns it.
func New(client *mongo.Client, database *mongo.Database) *Store {
	s := &Store{client: client, db: database}
	s.properties = &PropertyRepository{s: s, coll: database.Collection(propertiesCollection)}
	s.blog = &BlogRepository{s: s, coll: database.Collection(blogCollection)}
	s.inquiries = &InquiryRepository{s: s, coll: database.Collection(inquiriesCollection)}
	s.users = &UserRepository{s: s, coll: database.Collection(usersCollection)}
	return s
}

func (s *Store) Properties() repository.PropertyRepository { return s.properties }
func (s *Store) Blog() repository.BlogRepository { return s.blog }
func (s *Store) Inquiries() repository.InquiryRepository { return s.inquiries }
func (s *Store) Users() repository.UserRepository { return s.users }

// Database exposes the underlying database for GridFS uploads.
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and listing indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		propertiesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "price", Value: 1}}},
		},
		blogCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		inquiriesCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating %s indexes: %w", coll, err)
		}
	}
	return nil
}

// nextID returns the next value of the named sequence.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocating %s id: %w", name, err)
	}
	return counter.Seq, nil
}

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case db.IsMongoDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}
