package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no document matches a lookup
var ErrNotFound = errors.New("document not found")

// ErrNoDocuments is returned when asked to store an empty document set
var ErrNoDocuments = errors.New("no documents to store")

// Connect opens a MongoDB client and pings it
func Connect(ctx context.Context, uri string, maxPoolSize uint64) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if maxPoolSize > 0 {
		opts.SetMaxPoolSize(maxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// CreateAppUser creates a readWrite user on the database. An existing user is not an error.
func CreateAppUser(ctx context.Context, db *mongo.Database, user, password string) (created bool, err error) {
	if user == "" || password == "" {
		return false, errors.New("application user and password are required")
	}

	cmd := bson.D{
		{Key: "createUser", Value: user},
		{Key: "pwd", Value: password},
		{Key: "roles", Value: bson.A{
			bson.D{{Key: "role", Value: "readWrite"}, {Key: "db", Value: db.Name()}},
		}},
	}
	err = db.RunCommand(ctx, cmd).Err()
	if err != nil {
		var cmdErr mongo.CommandError
		// 51003: user already exists
		if errors.As(err, &cmdErr) && cmdErr.Code == 51003 {
			return false, nil
		}
		return false, fmt.Errorf("failed to create user %s: %w", user, err)
	}
	return true, nil
}
