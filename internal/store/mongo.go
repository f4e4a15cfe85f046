package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a MongoDB database. Each collection
// name maps to a MongoDB collection and ids are stored in "_id".
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a new instance of MongoStore.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Put(ctx context.Context, collection, id string, doc interface{}) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"collection": collection,
			"id":         id,
			"error":      err,
		}).Error("Failed to put document")
		return fmt.Errorf("failed to put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(fields)},
	)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CompareAndSwap(ctx context.Context, collection, id string, version int64, fields Fields) error {
	coll := s.db.Collection(collection)
	result, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, VersionField: version},
		bson.M{
			"$set": bson.M(fields),
			"$inc": bson.M{VersionField: 1},
		},
	)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to swap %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	// No match: either the document is gone or someone else won the race.
	count, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check %s/%s: %w", collection, id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filter Filter, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M(filter), opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) ListAll(ctx context.Context, collection string, out interface{}) error {
	return s.Query(ctx, collection, Filter{}, out)
}

func (s *MongoStore) BatchUpdate(ctx context.Context, collection string, ops []BatchOp) error {
	if len(ops) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": op.ID}).
			SetUpdate(bson.M{"$set": bson.M(op.Fields)}))
	}

	result, err := s.db.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to batch update %s: %w", collection, err)
	}

	logrus.WithFields(logrus.Fields{
		"collection": collection,
		"matched":    result.MatchedCount,
		"modified":   result.ModifiedCount,
	}).Debug("Batch update applied")
	return nil
}
