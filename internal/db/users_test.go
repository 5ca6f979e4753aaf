package db

import (
	"context"
	"testing"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func userDoc(id primitive.ObjectID, username string, role models.Role, pending bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "password", Value: "$2a$10$hash"},
		{Key: "role", Value: string(role)},
		{Key: "volunteer_request_pending", Value: pending},
	}
}

func TestUserRepository_Create(t *testing.T) {
	mt := newMock(t)

	mt.Run("success assigns id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Username: "alice", Password: "hash", Role: models.RoleUser}
		require.NoError(t, repo.Create(context.Background(), user))
		assert.False(t, user.ID.IsZero())
		assert.False(t, user.CreatedAt.IsZero())
	})

	mt.Run("duplicate username is conflict", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Create(context.Background(), &models.User{Username: "alice"})
		assert.ErrorIs(t, err, common.ErrConflict)
	})
}

func TestUserRepository_FindByUsername(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
			userDoc(id, "bob", models.RoleUser, true)))

		user, err := repo.FindByUsername(context.Background(), "bob")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "bob", user.Username)
		assert.True(t, user.PendingVolunteer())
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := repo.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestUserRepository_ListPendingVolunteers(t *testing.T) {
	mt := newMock(t)

	mt.Run("decodes all", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "carol", models.RoleUser, true),
			userDoc(primitive.NewObjectID(), "dave", models.RoleUser, true),
		))

		users, err := repo.ListPendingVolunteers(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "carol", users[0].Username)
		assert.Equal(t, "dave", users[1].Username)
	})

	mt.Run("empty is not nil", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		users, err := repo.ListPendingVolunteers(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}

func TestUserRepository_SetPassword(t *testing.T) {
	mt := newMock(t)

	mt.Run("updated", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		assert.NoError(t, repo.SetPassword(context.Background(), primitive.NewObjectID(), "newhash"))
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.SetPassword(context.Background(), primitive.NewObjectID(), "newhash")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestUserRepository_ApproveVolunteer(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("pending user approved", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		assert.NoError(t, repo.ApproveVolunteer(context.Background(), id))
	})

	mt.Run("already volunteer is conflict", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}},
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
				userDoc(id, "erin", models.RoleVolunteer, false)),
		)

		err := repo.ApproveVolunteer(context.Background(), id)
		assert.ErrorIs(t, err, common.ErrConflict)
	})

	mt.Run("missing user is not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}},
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch),
		)

		err := repo.ApproveVolunteer(context.Background(), id)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
