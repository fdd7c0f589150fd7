package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := repo.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "h", CreatedAt: time.Now()})
		require.NoError(mt, err)
		assert.Equal(mt, "alice", created.Username)
		assert.Len(mt, created.ID, 24)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: username_unique",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("find existing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "username", Value: "alice"},
			{Key: "password_hash", Value: "h"},
			{Key: "created_at", Value: primitive.NewDateTimeFromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
		}))

		user, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), user.ID)
		assert.Equal(mt, "h", user.PasswordHash)
		assert.Equal(mt, 2024, user.CreatedAt.Year())
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("find fails", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := repo.FindByUsername(context.Background(), "alice")
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, domain.ErrUserNotFound))
	})
}

func TestPackageRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("create draws id from counter", func(mt *mtest.T) {
		repo := NewPackageRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: packageSequence},
				{Key: "seq", Value: int64(7)},
			}}),
			mtest.CreateSuccessResponse(),
		)

		p := &domain.Package{Client: "X", Weight: 5, Origin: "A", Destination: "B", Date: day}
		require.NoError(mt, repo.Create(context.Background(), p))
		assert.Equal(mt, int64(7), p.ID)
	})

	mt.Run("create fails on insert", func(mt *mtest.T) {
		repo := NewPackageRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "seq", Value: int64(1)}}}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}),
		)

		p := &domain.Package{Client: "X", Date: day}
		assert.Error(mt, repo.Create(context.Background(), p))
		assert.Zero(mt, p.ID)
	})

	mt.Run("count by date", func(mt *mtest.T) {
		repo := NewPackageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.packages", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: 1},
			{Key: "n", Value: int32(3)},
		}))

		n, err := repo.CountByDate(context.Background(), day)
		require.NoError(mt, err)
		assert.Equal(mt, 3, n)
	})
}
