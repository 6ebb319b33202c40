package limiter

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection is the collection holding limiter state.
const MongoCollection = "auth_limiter"

type limiterKey struct {
	Username string `bson:"username"`
	IPHash   []byte `bson:"ip_hash"`
}

type limiterDoc struct {
	Key          limiterKey `bson:"_id"`
	FailCount    int        `bson:"fail_count"`
	BlockedUntil time.Time  `bson:"blocked_until"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

// Mongo keeps limiter state in one document per (username, ip hash).
type Mongo struct {
	coll   *mongo.Collection
	policy Policy
}

// NewMongo constructs a MongoDB-backed limiter on db.
func NewMongo(db *mongo.Database, p Policy) *Mongo {
	return &Mongo{coll: db.Collection(MongoCollection), policy: p}
}

func keyFilter(username string, ipHash []byte) bson.M {
	return bson.M{"_id": limiterKey{Username: username, IPHash: ipHash}}
}

// Allow implements Limiter.
func (l *Mongo) Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	var doc limiterDoc
	err := l.coll.FindOne(ctx, keyFilter(username, ipHash)).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return true, 0, nil
	case err != nil:
		return false, 0, err
	}
	if wait := time.Until(doc.BlockedUntil); wait > 0 {
		return false, wait, nil
	}
	return true, 0, nil
}

// Success implements Limiter.
func (l *Mongo) Success(ctx context.Context, username string, ipHash []byte) error {
	_, err := l.coll.UpdateOne(ctx, keyFilter(username, ipHash),
		bson.M{"$set": bson.M{
			"fail_count":    0,
			"blocked_until": time.Unix(0, 0).UTC(),
			"updated_at":    time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Failure implements Limiter. The counter update is a single pipeline
// findAndModify so concurrent failures are all counted.
func (l *Mongo) Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	now := time.Now().UTC()
	stale := bson.M{"$gt": bson.A{
		bson.M{"$subtract": bson.A{now, bson.M{"$ifNull": bson.A{"$updated_at", time.Unix(0, 0).UTC()}}}},
		l.policy.Window.Milliseconds(),
	}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"fail_count": bson.M{"$cond": bson.A{
				stale,
				1,
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$fail_count", 0}}, 1}},
			}},
			"blocked_until": bson.M{"$ifNull": bson.A{"$blocked_until", time.Unix(0, 0).UTC()}},
			"updated_at":    now,
		}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc limiterDoc
	if err := l.coll.FindOneAndUpdate(ctx, keyFilter(username, ipHash), update, opts).Decode(&doc); err != nil {
		return false, 0, err
	}
	if doc.FailCount < l.policy.MaxFails {
		return false, 0, nil
	}
	_, err := l.coll.UpdateOne(ctx, keyFilter(username, ipHash),
		bson.M{"$set": bson.M{"blocked_until": now.Add(l.policy.BlockFor)}},
	)
	if err != nil {
		return false, 0, err
	}
	return true, l.policy.BlockFor, nil
}
