package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DatabaseName = "projecthub_db"

// Connect opens a client and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %v", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the relational invariants depend on.
// Membership uniqueness and attachment-name uniqueness are store-level
// constraints here, not application-level checks, so two concurrent inserts
// for the same pair resolve to exactly one winner.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"memberships": {
			{
				Keys:    bson.D{{Key: "projectId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"attachments": {
			{
				Keys:    bson.D{{Key: "projectId", Value: 1}, {Key: "fileName", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"comments": {
			{Keys: bson.D{{Key: "taskId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		"tasks": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "deadline", Value: 1}}},
			{Keys: bson.D{{Key: "projectId", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %v", collection, err)
		}
	}
	return nil
}
