package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/and161185/todo-keeper/internal/model"
)

// todoDoc is keyed by owner, which caps it at one document per user.
type todoDoc struct {
	Owner string   `bson:"_id"`
	Tasks []string `bson:"tasks"`
}

// TodoRepo implements TodoRepository using MongoDB.
type TodoRepo struct{ coll *mongo.Collection }

// NewTodoRepo constructs a todo repository on the todo collection of db.
func NewTodoRepo(db *mongo.Database) *TodoRepo {
	return &TodoRepo{coll: db.Collection(TodoCollection)}
}

// Get returns the owner's tasks, or an empty list when no document exists.
func (r *TodoRepo) Get(ctx context.Context, owner model.UserID) ([]string, error) {
	var doc todoDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": owner.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("find todo: %w", err)
	}
	return nonNil(doc.Tasks), nil
}

// Append pushes task with an upserting findAndModify. The server applies the
// push atomically per document, so concurrent appends are never lost.
func (r *TodoRepo) Append(ctx context.Context, owner model.UserID, task string) ([]string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc todoDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": owner.String()},
		bson.M{"$push": bson.M{"tasks": task}},
		opts,
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("append todo: %w", err)
	}
	return nonNil(doc.Tasks), nil
}

func nonNil(tasks []string) []string {
	if tasks == nil {
		return []string{}
	}
	return tasks
}
