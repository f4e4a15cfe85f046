package database

import (
	"context"
	"fmt"

	"github.com/Dias221467/Player_Progression/internal/config"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens the MongoDB connection and makes sure the indexes exist.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %v", err)
	}

	db := client.Database(cfg.MongoDatabase)
	if err := EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logrus.WithField("database", cfg.MongoDatabase).Info("Connected to MongoDB")
	return db, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique ones
// come from repository.UniqueIndexes, which the memory store enforces too.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		repository.PlayersCollection: {
			{Keys: bson.D{{Key: "level", Value: -1}, {Key: "_id", Value: 1}}},
		},
		repository.FriendRequestsCollection: {
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		repository.FriendshipsCollection: {
			{Keys: bson.D{{Key: "player_ids", Value: 1}}},
		},
		repository.NotificationsCollection: {
			{Keys: bson.D{{Key: "player_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		repository.ActivitiesCollection: {
			{Keys: bson.D{{Key: "player_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for _, idx := range repository.UniqueIndexes {
		indexes[idx.Collection] = append(indexes[idx.Collection], uniqueModel(idx))
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %v", name, err)
		}
	}
	return nil
}

func uniqueModel(idx store.UniqueIndex) mongo.IndexModel {
	keys := make(bson.D, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	opts := options.Index().SetUnique(true)
	if len(idx.Partial) > 0 {
		opts.SetPartialFilterExpression(bson.M(idx.Partial))
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}
