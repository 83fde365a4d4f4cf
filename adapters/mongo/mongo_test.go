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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/lborres/reisetagebuch/core"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// Requirement: owner queries filter on user_id, sort ascending by the sort key
// and return documents the mapper can read
func TestCollection_FindByOwner(t *testing.T) {
	mt := newMockT(t)

	mt.Run("returns plain documents", func(mt *mtest.T) {
		// Arrange
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "user_id", Value: "u1"},
				{Key: "title", Value: "Rom"},
				{Key: "cost", Value: int32(120)},
				{Key: "images", Value: bson.A{"a.jpg", "b.jpg"}},
			}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)
		col := NewCollection(mt.Coll)

		// Act
		docs, err := col.FindByOwner(context.Background(), "u1", "start_date")

		// Assert
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		trip := core.MapReiseDoc(docs[0])
		assert.Equal(mt, oid.Hex(), trip.ID)
		assert.Equal(mt, []string{"a.jpg", "b.jpg"}, trip.Images)
		assert.Equal(mt, "a.jpg", *trip.CoverImageURL)
		assert.Equal(mt, 120.0, *trip.Cost)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "u1", cmd.Lookup("filter", "user_id").StringValue())
		assert.Equal(mt, int64(1), cmd.Lookup("sort", "start_date").AsInt64())
	})

	mt.Run("propagates command errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		_, err := NewCollection(mt.Coll).FindByOwner(context.Background(), "u1", "year")

		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "unauthorized")
	})
}

// Requirement: point lookups report a missing document as not found
func TestCollection_FindOne(t *testing.T) {
	mt := newMockT(t)

	mt.Run("found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "t1"},
			{Key: "user_id", Value: "u1"},
			{Key: "title", Value: "Rom"},
		}))

		doc, err := NewCollection(mt.Coll).FindOne(context.Background(), "t1", "u1")

		require.NoError(mt, err)
		assert.Equal(mt, "Rom", doc["title"])
		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "t1", cmd.Lookup("filter", "_id").StringValue())
		assert.Equal(mt, "u1", cmd.Lookup("filter", "user_id").StringValue())
	})

	mt.Run("not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewCollection(mt.Coll).FindOne(context.Background(), "t9", "u1")

		assert.ErrorIs(mt, err, core.ErrNotFound)
	})
}

func TestCollection_UpsertAndInsert(t *testing.T) {
	mt := newMockT(t)

	mt.Run("upsert succeeds", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := NewCollection(mt.Coll).Upsert(context.Background(), core.FieldID, "t1",
			core.RawDocument{"title": "Rom"}, time.Now())

		require.NoError(mt, err)
		assert.Equal(mt, "update", mt.GetStartedEvent().CommandName)
	})

	mt.Run("insert duplicate key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := NewCollection(mt.Coll).Insert(context.Background(), core.RawDocument{"_id": "l1", "action": "x"})

		require.Error(mt, err)
		assert.True(mt, mongo.IsDuplicateKeyError(err))
	})
}

// Requirement: upserts replace supplied fields, always refresh updated_at and
// write created_at only on insert
func TestUpsertUpdate(t *testing.T) {
	// Arrange
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fields := core.RawDocument{
		"_id":        "ignored",
		"created_at": now.Add(-time.Hour),
		"title":      "Rom",
		"cost":       (*float64)(nil),
	}

	// Act
	update := upsertUpdate(fields, now)

	// Assert
	set := update["$set"].(bson.M)
	assert.Equal(t, "Rom", set["title"])
	assert.Contains(t, set, "cost")
	assert.Equal(t, now, set[core.FieldUpdatedAt])
	assert.NotContains(t, set, core.FieldID)
	assert.NotContains(t, set, core.FieldCreatedAt)
	assert.Equal(t, bson.M{core.FieldCreatedAt: now}, update["$setOnInsert"])
}

func TestToRaw_ConvertsDriverTypes(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	raw := toRaw(bson.M{
		"images":   primitive.A{"a.jpg"},
		"metadata": primitive.M{"tags": primitive.A{"x"}},
		"nested":   primitive.D{{Key: "k", Value: "v"}},
		"when":     primitive.NewDateTimeFromTime(at),
	})

	assert.Equal(t, []any{"a.jpg"}, raw["images"])
	assert.Equal(t, map[string]any{"tags": []any{"x"}}, raw["metadata"])
	assert.Equal(t, map[string]any{"k": "v"}, raw["nested"])
	assert.Equal(t, at, raw["when"])
}

func TestStore_Collection(t *testing.T) {
	mt := newMockT(t)

	mt.Run("whitelisted names only", func(mt *mtest.T) {
		store := New(mt.Client, "reisetagebuch")

		_, err := store.Collection(core.CollectionReisen)
		require.NoError(mt, err)

		_, err = store.Collection("sessions")
		assert.True(mt, errors.Is(err, core.ErrUnknownCollection))
	})
}
