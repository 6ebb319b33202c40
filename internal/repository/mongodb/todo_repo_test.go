package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/and161185/todo-keeper/internal/model"
)

const todoNS = "TODO.todo"

func TestTodoRepo_Get(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()
	owner := model.MustParseUserID("0a1b2c3d4e5f")

	mt.Run("existing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, todoNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: owner.String()},
			{Key: "tasks", Value: bson.A{"buy milk", "call mom"}},
		}))
		tasks, err := NewTodoRepo(mt.DB).Get(ctx, owner)
		require.NoError(mt, err)
		require.Equal(mt, []string{"buy milk", "call mom"}, tasks)
	})

	mt.Run("absent is empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, todoNS, mtest.FirstBatch))
		tasks, err := NewTodoRepo(mt.DB).Get(ctx, owner)
		require.NoError(mt, err)
		require.NotNil(mt, tasks)
		require.Empty(mt, tasks)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 91, Name: "ShutdownInProgress", Message: "shutting down",
		}))
		_, err := NewTodoRepo(mt.DB).Get(ctx, owner)
		require.Error(mt, err)
	})
}

func TestTodoRepo_Append(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()
	owner := model.MustParseUserID("0a1b2c3d4e5f")

	mt.Run("returns updated list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: owner.String()},
			{Key: "tasks", Value: bson.A{"buy milk", "call mom"}},
		}}))
		tasks, err := NewTodoRepo(mt.DB).Append(ctx, owner, "call mom")
		require.NoError(mt, err)
		require.Equal(mt, []string{"buy milk", "call mom"}, tasks)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 91, Name: "ShutdownInProgress", Message: "shutting down",
		}))
		_, err := NewTodoRepo(mt.DB).Append(ctx, owner, "x")
		require.Error(mt, err)
	})
}
