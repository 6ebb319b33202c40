package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const limiterNS = "TODO.auth_limiter"

func limiterValue(fails int, blockedUntil time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: bson.D{{Key: "username", Value: "alice"}, {Key: "ip_hash", Value: HashIP("10.0.0.1")}}},
		{Key: "fail_count", Value: fails},
		{Key: "blocked_until", Value: blockedUntil},
		{Key: "updated_at", Value: time.Now()},
	}
}

func TestMongo_Allow(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ip := HashIP("10.0.0.1")

	mt.Run("no document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, limiterNS, mtest.FirstBatch))
		ok, wait, err := NewMongo(mt.DB, testPolicy).Allow(ctx, "alice", ip)
		require.NoError(mt, err)
		require.True(mt, ok)
		require.Zero(mt, wait)
	})

	mt.Run("blocked", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, limiterNS, mtest.FirstBatch,
			limiterValue(3, time.Now().Add(time.Minute))))
		ok, wait, err := NewMongo(mt.DB, testPolicy).Allow(ctx, "alice", ip)
		require.NoError(mt, err)
		require.False(mt, ok)
		require.Greater(mt, wait, time.Duration(0))
	})

	mt.Run("block expired", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, limiterNS, mtest.FirstBatch,
			limiterValue(3, time.Now().Add(-time.Minute))))
		ok, _, err := NewMongo(mt.DB, testPolicy).Allow(ctx, "alice", ip)
		require.NoError(mt, err)
		require.True(mt, ok)
	})
}

func TestMongo_SuccessAndFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ip := HashIP("10.0.0.1")

	mt.Run("success resets", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, NewMongo(mt.DB, testPolicy).Success(ctx, "alice", ip))
	})

	mt.Run("failure below threshold", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: limiterValue(1, time.Unix(0, 0))}))
		blocked, wait, err := NewMongo(mt.DB, testPolicy).Failure(ctx, "alice", ip)
		require.NoError(mt, err)
		require.False(mt, blocked)
		require.Zero(mt, wait)
	})

	mt.Run("failure at threshold blocks", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: limiterValue(3, time.Unix(0, 0))}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)
		blocked, wait, err := NewMongo(mt.DB, testPolicy).Failure(ctx, "alice", ip)
		require.NoError(mt, err)
		require.True(mt, blocked)
		require.Equal(mt, testPolicy.BlockFor, wait)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 91, Name: "ShutdownInProgress", Message: "shutting down",
		}))
		_, _, err := NewMongo(mt.DB, testPolicy).Failure(ctx, "alice", ip)
		require.Error(mt, err)
	})
}
