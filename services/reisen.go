package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lborres/reisetagebuch/core"
)

// SortTrips orders remote trips ascending
const SortTrips = "start_date"

// ReisenService serves trips from the reisen collection
type ReisenService struct {
	remote
}

// Ensure ReisenService implements TripHandler
var _ core.TripHandler = (*ReisenService)(nil)

func NewReisenService(cfg RemoteConfig) *ReisenService {
	return &ReisenService{remote{cfg.withDefaults()}}
}

// ListTrips returns the trips of userID ordered by start date
func (s *ReisenService) ListTrips(ctx context.Context, userID string) (*core.TripList, error) {
	if !s.configured() {
		return &core.TripList{Trips: []core.TripRecord{}, Skipped: SkippedUnconfigured}, nil
	}

	userID = strings.TrimSpace(userID)
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}

	col, err := s.collection(ctx, core.CollectionReisen)
	if err != nil {
		return nil, err
	}

	docs, err := col.FindByOwner(ctx, userID, SortTrips)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}

	trips := make([]core.TripRecord, 0, len(docs))
	for _, doc := range docs {
		trips = append(trips, core.MapReiseDoc(doc))
	}
	return &core.TripList{Trips: trips}, nil
}

// GetTrip returns one trip, scoped to its owner
func (s *ReisenService) GetTrip(ctx context.Context, id, userID string) (*core.TripResult, error) {
	if !s.configured() {
		return &core.TripResult{Skipped: SkippedUnconfigured}, nil
	}

	userID = strings.TrimSpace(userID)
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}

	col, err := s.collection(ctx, core.CollectionReisen)
	if err != nil {
		return nil, err
	}

	doc, err := col.FindOne(ctx, id, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("trip %s: %w", id, core.ErrTripNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}

	trip := core.MapReiseDoc(doc)
	return &core.TripResult{Trip: &trip}, nil
}

// UpsertTrip creates or replaces a trip keyed by its id.
// images overrides doc.Images when not nil.
func (s *ReisenService) UpsertTrip(ctx context.Context, doc core.ReiseDoc, images []string) (*core.TripRecord, error) {
	if !s.configured() {
		return nil, core.ErrUnconfigured
	}

	// Step 1: Validate before touching the backend
	if err := validateStruct(doc, "trip."); err != nil {
		return nil, err
	}

	// Step 2: Resolve and upload images
	if images == nil {
		images = doc.Images
	}
	images, err := s.Images.Normalize(ctx, core.CollectionReisen+"/"+doc.UserID, images)
	if err != nil {
		return nil, err
	}

	// Step 3: Upsert
	col, err := s.collection(ctx, core.CollectionReisen)
	if err != nil {
		return nil, err
	}

	fields := doc.Document(images)
	if err := col.Upsert(ctx, core.FieldID, doc.ID, fields, s.now()); err != nil {
		return nil, fmt.Errorf("upsert trip: %w", err)
	}

	trip := core.MapReiseDoc(fields.WithID(doc.ID))
	return &trip, nil
}
