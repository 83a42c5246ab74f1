package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// ConnectDB dials MongoDB and verifies the primary answers a ping.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), pingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = DisconnectDB(client)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection the API uses.
// Failures are logged; the server keeps running without the missing index.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	steps := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{userCollectionName, userIndexes()},
		{trainerCollectionName, trainerIndexes()},
		{courseCollectionName, courseIndexes()},
	}

	for _, s := range steps {
		if _, err := db.Collection(s.collection).Indexes().CreateMany(ctx, s.models); err != nil {
			logger.Warn("failed to create indexes", zap.String("collection", s.collection), zap.Error(err))
			continue
		}
		logger.Debug("indexes ensured", zap.String("collection", s.collection))
	}
}
