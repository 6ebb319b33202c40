package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/and161185/todo-keeper/internal/crypto"
	"github.com/and161185/todo-keeper/internal/errs"
	"github.com/and161185/todo-keeper/internal/model"
)

// userDoc is the stored shape of a user. Session tokens are embedded so that
// login and logout are single $push/$pull updates.
type userDoc struct {
	ID            string   `bson:"_id"`
	Username      string   `bson:"username"`
	Password      string   `bson:"password"`
	Email         *string  `bson:"email,omitempty"`
	SessionTokens []string `bson:"session_tokens"`
}

// UserRepo implements UserRepository using MongoDB.
type UserRepo struct{ coll *mongo.Collection }

// NewUserRepo constructs a user repository on the users collection of db.
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(UsersCollection)}
}

// Create inserts a user document with an empty token set.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	doc := userDoc{
		ID:            u.ID.String(),
		Username:      u.Username,
		Password:      u.Password.String(),
		Email:         u.Email,
		SessionTokens: []string{},
	}
	_, err := r.coll.InsertOne(ctx, doc)
	if index, ok := duplicateKeyIndex(err); ok {
		if index == idIndex {
			return errs.ErrIDConflict
		}
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID finds a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id model.UserID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

// GetByUsername finds a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetBySessionToken finds the user whose token set contains tok.
func (r *UserRepo) GetBySessionToken(ctx context.Context, tok model.SessionToken) (*model.User, error) {
	return r.findOne(ctx, bson.M{"session_tokens": tok.String()})
}

// AttachSessionToken pushes tok onto the named user's token set.
func (r *UserRepo) AttachSessionToken(ctx context.Context, username string, tok model.SessionToken) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$push": bson.M{"session_tokens": tok.String()}},
	)
	if err != nil {
		return fmt.Errorf("attach session token: %w", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DetachSessionToken pulls tok from whichever user holds it.
func (r *UserRepo) DetachSessionToken(ctx context.Context, tok model.SessionToken) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"session_tokens": tok.String()},
		bson.M{"$pull": bson.M{"session_tokens": tok.String()}},
	)
	if err != nil {
		return fmt.Errorf("detach session token: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	opts := options.FindOne().SetProjection(bson.M{"session_tokens": 0})
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel()
}

func (d userDoc) toModel() (*model.User, error) {
	id, err := model.ParseUserID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("stored user id: %w", err)
	}
	pwd, err := crypto.ParseHashedPassword(d.Password)
	if err != nil {
		return nil, fmt.Errorf("stored password of %s: %w", id, err)
	}
	return &model.User{ID: id, Username: d.Username, Password: pwd, Email: d.Email}, nil
}
