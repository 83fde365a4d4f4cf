package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/reisetagebuch/core"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestReisen(store *FakeDocumentStore, clock *stepClock) *ReisenService {
	cfg := RemoteConfig{Documents: store.Provider()}
	if clock != nil {
		cfg.Now = clock.Now
	}
	return NewReisenService(cfg)
}

// Requirement: upserting the same trip twice keeps one document, created_at
// unchanged and updated_at refreshed.
func TestReisenService_UpsertIsIdempotent(t *testing.T) {
	// Arrange
	store := NewFakeDocumentStore()
	clock := &stepClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestReisen(store, clock)
	doc := core.ReiseDoc{ID: "trip-1", UserID: "u1", Title: "Lissabon"}

	// Act
	_, err := svc.UpsertTrip(context.Background(), doc, nil)
	require.NoError(t, err)
	first := store.Docs(core.CollectionReisen)[0]
	_, err = svc.UpsertTrip(context.Background(), doc, nil)
	require.NoError(t, err)

	// Assert
	docs := store.Docs(core.CollectionReisen)
	require.Len(t, docs, 1)
	assert.Equal(t, first[core.FieldCreatedAt], docs[0][core.FieldCreatedAt])
	assert.True(t, docs[0][core.FieldUpdatedAt].(time.Time).After(first[core.FieldUpdatedAt].(time.Time)))
}

// Requirement: the upsert response carries the derived cover image and images
// from the top level override the ones inside the trip.
func TestReisenService_UpsertTrip(t *testing.T) {
	tests := []struct {
		name       string
		doc        core.ReiseDoc
		images     []string
		wantImages []string
		wantCover  *string
	}{
		{
			name:       "cover from first image",
			doc:        core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom"},
			images:     []string{"a.jpg", "b.jpg"},
			wantImages: []string{"a.jpg", "b.jpg"},
			wantCover:  ptr("a.jpg"),
		},
		{
			name:       "explicit cover wins",
			doc:        core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom", CoverImageURL: ptr("c.jpg")},
			images:     []string{"a.jpg"},
			wantImages: []string{"a.jpg"},
			wantCover:  ptr("c.jpg"),
		},
		{
			name:       "top level images override",
			doc:        core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom", Images: []string{"inner.jpg"}},
			images:     []string{"outer.jpg"},
			wantImages: []string{"outer.jpg"},
			wantCover:  ptr("outer.jpg"),
		},
		{
			name:       "trip images used when none at top level",
			doc:        core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom", Images: []string{"inner.jpg"}},
			wantImages: []string{"inner.jpg"},
			wantCover:  ptr("inner.jpg"),
		},
		{
			name:       "no images",
			doc:        core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom"},
			wantImages: []string{},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			store := NewFakeDocumentStore()
			svc := newTestReisen(store, nil)

			// Act
			trip, err := svc.UpsertTrip(context.Background(), test.doc, test.images)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, test.doc.ID, trip.ID)
			assert.Equal(t, test.wantImages, trip.Images)
			assert.Equal(t, test.wantCover, trip.CoverImageURL)

			stored := core.MapReiseDoc(store.Docs(core.CollectionReisen)[0])
			assert.Equal(t, *trip, stored)
		})
	}
}

// Requirement: a trip missing a required field is rejected without contacting the backend.
func TestReisenService_UpsertValidation(t *testing.T) {
	tests := []struct {
		name       string
		doc        core.ReiseDoc
		wantFields []string
	}{
		{name: "missing title", doc: core.ReiseDoc{ID: "t1", UserID: "u1"}, wantFields: []string{"trip.title"}},
		{name: "missing id and user", doc: core.ReiseDoc{Title: "Rom"}, wantFields: []string{"trip.id", "trip.user_id"}},
		{name: "rating out of range", doc: core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom", Rating: ptr(6.0)}, wantFields: []string{"trip.rating"}},
		{name: "negative cost", doc: core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom", Cost: ptr(-1.0)}, wantFields: []string{"trip.cost"}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			store := NewFakeDocumentStore()
			svc := newTestReisen(store, nil)

			// Act
			_, err := svc.UpsertTrip(context.Background(), test.doc, nil)

			// Assert
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ElementsMatch(t, test.wantFields, verr.Fields)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.Zero(t, store.Calls())
		})
	}
}

// Requirement: without a document store reads are skipped and writes fail.
func TestReisenService_Unconfigured(t *testing.T) {
	// Arrange
	svc := NewReisenService(RemoteConfig{})
	ctx := context.Background()

	// Act
	list, listErr := svc.ListTrips(ctx, "")
	one, getErr := svc.GetTrip(ctx, "t1", "u1")
	_, upsertErr := svc.UpsertTrip(ctx, core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom"}, nil)

	// Assert
	require.NoError(t, listErr)
	assert.Equal(t, SkippedUnconfigured, list.Skipped)
	assert.NotNil(t, list.Trips)
	assert.Empty(t, list.Trips)

	require.NoError(t, getErr)
	assert.Equal(t, SkippedUnconfigured, one.Skipped)
	assert.Nil(t, one.Trip)

	assert.ErrorIs(t, upsertErr, core.ErrUnconfigured)
}

func TestReisenService_ListTrips(t *testing.T) {
	// Arrange
	store := NewFakeDocumentStore()
	svc := newTestReisen(store, nil)
	ctx := context.Background()
	for _, doc := range []core.ReiseDoc{
		{ID: "t1", UserID: "u1", Title: "Später", StartDate: ptr("2024-09-01")},
		{ID: "t2", UserID: "u2", Title: "Fremd", StartDate: ptr("2020-01-01")},
		{ID: "t3", UserID: "u1", Title: "Früher", StartDate: ptr("2023-02-01")},
		{ID: "t4", UserID: "u1", Title: "Ohne Datum"},
	} {
		_, err := svc.UpsertTrip(ctx, doc, nil)
		require.NoError(t, err)
	}

	// Act
	list, err := svc.ListTrips(ctx, " u1 ")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, list.Skipped)
	titles := []string{}
	for _, trip := range list.Trips {
		titles = append(titles, trip.Title)
	}
	assert.Equal(t, []string{"Ohne Datum", "Früher", "Später"}, titles)
}

func TestReisenService_ListTripsRequiresUser(t *testing.T) {
	store := NewFakeDocumentStore()
	svc := newTestReisen(store, nil)

	_, err := svc.ListTrips(context.Background(), "   ")

	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Zero(t, store.Calls())
}

// Requirement: point lookups are scoped to the owner and report not-found distinctly.
func TestReisenService_GetTrip(t *testing.T) {
	// Arrange
	store := NewFakeDocumentStore()
	svc := newTestReisen(store, nil)
	ctx := context.Background()
	_, err := svc.UpsertTrip(ctx, core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom"}, nil)
	require.NoError(t, err)

	// Act
	own, ownErr := svc.GetTrip(ctx, "t1", "u1")
	_, foreignErr := svc.GetTrip(ctx, "t1", "u2")
	_, missingErr := svc.GetTrip(ctx, "t9", "u1")
	_, noUserErr := svc.GetTrip(ctx, "t1", "")

	// Assert
	require.NoError(t, ownErr)
	assert.Equal(t, "Rom", own.Trip.Title)
	assert.ErrorIs(t, foreignErr, core.ErrTripNotFound)
	assert.ErrorIs(t, missingErr, core.ErrTripNotFound)
	assert.ErrorIs(t, noUserErr, core.ErrValidation)
}

func TestReisenService_BackendErrorsPropagate(t *testing.T) {
	// Arrange
	store := NewFakeDocumentStore()
	boom := errors.New("connection reset")
	store.FailWith(boom)
	svc := newTestReisen(store, nil)

	// Act
	_, listErr := svc.ListTrips(context.Background(), "u1")
	_, upsertErr := svc.UpsertTrip(context.Background(), core.ReiseDoc{ID: "t1", UserID: "u1", Title: "Rom"}, nil)

	// Assert
	assert.ErrorIs(t, listErr, boom)
	assert.ErrorIs(t, upsertErr, boom)
}

func TestReisenService_DialErrorsPropagate(t *testing.T) {
	// Arrange
	boom := errors.New("server selection timeout")
	provider := core.NewStorageProvider(func(ctx context.Context) (core.DocumentStorage, error) {
		return nil, boom
	})
	svc := NewReisenService(RemoteConfig{Documents: provider})

	// Act
	_, err := svc.ListTrips(context.Background(), "u1")

	// Assert
	assert.ErrorIs(t, err, boom)
}
