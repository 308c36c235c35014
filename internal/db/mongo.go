package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoOptions are the client options for uri. Timeouts are bounded so a
// missing server fails startup instead of hanging it.
func MongoOptions(uri, appName string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetServerSelectionTimeout(10 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(50)
}

// ConnectMongo connects, pings the primary and returns the client with the
// named database.
func ConnectMongo(ctx context.Context, uri, dbName, appName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, MongoOptions(uri, appName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("db", dbName).Msg("connected to MongoDB")
	return client, client.Database(dbName), nil
}

// DisconnectMongo closes the client; nil is allowed.
func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}
