// Package mongodb contains MongoDB implementations of repository interfaces.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection = "users"
	TodoCollection  = "todo"
)

// Index names, also used to tell duplicate-key errors apart.
const (
	usernameIndex     = "username_1"
	sessionTokenIndex = "session_tokens_1"
	idIndex           = "_id_"
)

// DB bundles the client and the application database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials uri and selects the database dbName.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &DB{Client: client, Database: client.Database(dbName)}, nil
}

// EnsureIndexes creates the unique username index and the session token lookup index.
// It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(usernameIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_tokens", Value: 1}},
			Options: options.Index().SetName(sessionTokenIndex),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// Ping implements repository.Pinger.
func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

// duplicateKeyIndex reports whether err is a duplicate key error and, if the
// server says so, which index was violated.
func duplicateKeyIndex(err error) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			for _, name := range []string{usernameIndex, idIndex} {
				if strings.Contains(e.Message, "index: "+name) {
					return name, true
				}
			}
		}
	}
	return "", true
}
