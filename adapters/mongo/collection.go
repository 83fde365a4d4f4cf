package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lborres/reisetagebuch/core"
)

type Collection struct {
	coll *mongo.Collection
}

var _ core.DocumentCollection = (*Collection)(nil)

func NewCollection(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

// FindByOwner sorts ascending; documents missing sortKey come first.
func (c *Collection) FindByOwner(ctx context.Context, ownerID, sortKey string) ([]core.RawDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}})

	cursor, err := c.coll.Find(ctx, bson.M{core.FieldUserID: ownerID}, opts)
	if err != nil {
		return nil, err
	}

	var found []bson.M
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	docs := make([]core.RawDocument, 0, len(found))
	for _, m := range found {
		docs = append(docs, toRaw(m))
	}
	return docs, nil
}

func (c *Collection) FindOne(ctx context.Context, id, ownerID string) (core.RawDocument, error) {
	var found bson.M
	err := c.coll.FindOne(ctx, bson.M{core.FieldID: id, core.FieldUserID: ownerID}).Decode(&found)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return toRaw(found), nil
}

// Upsert issues a single UpdateOne so concurrent writers never produce duplicates.
func (c *Collection) Upsert(ctx context.Context, matchField, matchValue string, fields core.RawDocument, now time.Time) error {
	_, err := c.coll.UpdateOne(ctx, bson.M{matchField: matchValue}, upsertUpdate(fields, now), options.Update().SetUpsert(true))
	return err
}

// upsertUpdate sets every supplied field plus updated_at, and created_at
// only when the document is inserted.
func upsertUpdate(fields core.RawDocument, now time.Time) bson.M {
	set := bson.M{}
	for k, v := range fields {
		if k == core.FieldID || k == core.FieldCreatedAt {
			continue
		}
		set[k] = v
	}
	set[core.FieldUpdatedAt] = now

	return bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{core.FieldCreatedAt: now},
	}
}

func (c *Collection) Insert(ctx context.Context, doc core.RawDocument) error {
	_, err := c.coll.InsertOne(ctx, bson.M(doc))
	return err
}

// toRaw converts driver types into plain Go values. Object ids keep their
// type since the mapper reads them through Hex.
func toRaw(m bson.M) core.RawDocument {
	out := make(core.RawDocument, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.M:
		return map[string]any(toRaw(bson.M(t)))
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
