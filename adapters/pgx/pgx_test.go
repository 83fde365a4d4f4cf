package pgx

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/reisetagebuch/core"
)

func newMockCollection(t *testing.T, name string) (pgxmock.PgxPoolIface, core.DocumentCollection) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	col, err := New(mock).Collection(name)
	require.NoError(t, err)
	return mock, col
}

// Requirement: an upsert is one statement that merges supplied fields and
// never touches created_at on conflict
func TestCollection_Upsert(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		matchField string
		matchValue string
		fields     core.RawDocument
		wantOwner  any
		wantDoc    string
	}{
		{
			name:       "trip keyed by id",
			collection: core.CollectionReisen,
			matchField: core.FieldID,
			matchValue: "t1",
			fields:     core.RawDocument{core.FieldUserID: "u1", "title": "Rom", "cost": (*float64)(nil)},
			wantOwner:  ptr("u1"),
			wantDoc:    `{"cost":null,"title":"Rom","user_id":"u1"}`,
		},
		{
			name:       "profile keyed by user id",
			collection: core.CollectionUsers,
			matchField: core.FieldUserID,
			matchValue: "u7",
			fields:     core.RawDocument{core.FieldUserID: "u7", "metadata": map[string]any{}},
			wantOwner:  ptr("u7"),
			wantDoc:    `{"metadata":{},"user_id":"u7"}`,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			mock, col := newMockCollection(t, test.collection)
			now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
			table := regexp.QuoteMeta(`"` + test.collection + `"`)

			mock.ExpectExec(`INSERT INTO ` + table + `.*ON CONFLICT \(key\) DO UPDATE.*` + table + `\.doc \|\| EXCLUDED\.doc`).
				WithArgs(test.matchValue, test.wantOwner, []byte(test.wantDoc), now).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			// Act
			err := col.Upsert(context.Background(), test.matchField, test.matchValue, test.fields, now)

			// Assert
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCollection_FindByOwner(t *testing.T) {
	// Arrange
	mock, col := newMockCollection(t, core.CollectionReisen)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"key", "doc", "created_at", "updated_at"}).
		AddRow("t2", []byte(`{"user_id":"u1","title":"Ohne Datum","images":[]}`), created, created).
		AddRow("t1", []byte(`{"user_id":"u1","title":"Rom","start_date":"2024-04-01","images":["a.jpg"],"cost":99.5}`), created, created)
	mock.ExpectQuery(`SELECT key, doc, created_at, updated_at FROM "reisen" WHERE owner = \$1 ORDER BY doc -> \$2 ASC NULLS FIRST`).
		WithArgs("u1", "start_date").
		WillReturnRows(rows)

	// Act
	docs, err := col.FindByOwner(context.Background(), "u1", "start_date")

	// Assert
	require.NoError(t, err)
	require.Len(t, docs, 2)
	first, second := core.MapReiseDoc(docs[0]), core.MapReiseDoc(docs[1])
	assert.Equal(t, "t2", first.ID)
	assert.Nil(t, first.CoverImageURL)
	assert.Equal(t, "t1", second.ID)
	assert.Equal(t, "a.jpg", *second.CoverImageURL)
	assert.Equal(t, 99.5, *second.Cost)
	assert.Equal(t, created, docs[1][core.FieldCreatedAt])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollection_FindOne(t *testing.T) {
	t.Run("missing row is not found", func(t *testing.T) {
		mock, col := newMockCollection(t, core.CollectionReisen)
		mock.ExpectQuery(`SELECT key, doc, created_at, updated_at FROM "reisen" WHERE key = \$1 AND owner = \$2`).
			WithArgs("t9", "u1").
			WillReturnRows(pgxmock.NewRows([]string{"key", "doc", "created_at", "updated_at"}))

		_, err := col.FindOne(context.Background(), "t9", "u1")

		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query errors propagate", func(t *testing.T) {
		mock, col := newMockCollection(t, core.CollectionReisen)
		boom := errors.New("connection refused")
		mock.ExpectQuery(`SELECT key`).WithArgs("t1", "u1").WillReturnError(boom)

		_, err := col.FindOne(context.Background(), "t1", "u1")

		assert.ErrorIs(t, err, boom)
	})
}

func TestCollection_Insert(t *testing.T) {
	// Arrange
	mock, col := newMockCollection(t, core.CollectionBucketLogs)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO "bucketlist_logs" \(key, owner, doc, created_at, updated_at\)`).
		WithArgs("l1", (*string)(nil), []byte(`{"action":"bucket.upsert","ip":"::1"}`), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// Act
	err := col.Insert(context.Background(), core.RawDocument{
		core.FieldID:        "l1",
		"action":            "bucket.upsert",
		"ip":                "::1",
		core.FieldCreatedAt: at,
	})

	// Assert
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollection_InsertRequiresID(t *testing.T) {
	_, col := newMockCollection(t, core.CollectionBucketLogs)

	err := col.Insert(context.Background(), core.RawDocument{"action": "x"})

	assert.Error(t, err)
}

func TestAdapter_Collection(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = New(mock).Collection("pg_catalog.pg_user")

	assert.ErrorIs(t, err, core.ErrUnknownCollection)
}

func ptr[T any](v T) *T {
	return &v
}
