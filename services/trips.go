package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lborres/reisetagebuch/core"
)

// TripStore keeps trips in local storage
type TripStore struct {
	trips *Collection[core.Trip]
}

func NewTripStore(kv core.KVStorage, ids *IDClock, logger *slog.Logger) *TripStore {
	return &TripStore{trips: NewCollection[core.Trip](kv, core.KeyTrips, ids, logger)}
}

// Create adds a trip for userID with no photos and no locations.
func (s *TripStore) Create(userID int64, input core.TripInput) (core.Trip, error) {
	if err := validateStruct(input, ""); err != nil {
		return core.Trip{}, err
	}

	return s.trips.Create(func(id int64) core.Trip {
		return core.Trip{
			ID:          id,
			UserID:      userID,
			Title:       input.Title,
			Country:     input.Country,
			Year:        input.Year,
			WithWhom:    input.WithWhom,
			Description: input.Description,
			CoverImage:  input.CoverImage,
			Photos:      []string{},
			Locations:   []core.Location{},
		}
	})
}

func (s *TripStore) TripsForUser(userID int64) []core.Trip {
	return ListForOwner(s.trips, userID)
}

func (s *TripStore) Get(id int64) (core.Trip, error) {
	trip, ok := s.trips.Find(id)
	if !ok {
		return core.Trip{}, fmt.Errorf("trip %d: %w", id, core.ErrTripNotFound)
	}
	return trip, nil
}

// Update merges the non-nil patch fields into the trip.
func (s *TripStore) Update(id int64, patch core.TripPatch) (core.Trip, error) {
	trip, err := s.trips.Update(id, func(t *core.Trip) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Country != nil {
			t.Country = *patch.Country
		}
		if patch.Year != nil {
			t.Year = *patch.Year
		}
		if patch.WithWhom != nil {
			t.WithWhom = *patch.WithWhom
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		switch {
		case patch.ClearCoverImage:
			t.CoverImage = nil
		case patch.CoverImage != nil:
			cover := *patch.CoverImage
			t.CoverImage = &cover
		}
		if patch.Photos != nil {
			t.Photos = append([]string{}, (*patch.Photos)...)
		}
		if patch.Locations != nil {
			t.Locations = append([]core.Location{}, (*patch.Locations)...)
		}
	})
	return trip, tripErr(id, err)
}

// AddPhoto appends an image reference to the trip.
func (s *TripStore) AddPhoto(tripID int64, image string) (core.Trip, error) {
	if image == "" {
		return core.Trip{}, &core.ValidationError{Fields: []string{"photo"}}
	}
	trip, err := s.trips.Update(tripID, func(t *core.Trip) {
		t.Photos = append(t.Photos, image)
	})
	return trip, tripErr(tripID, err)
}

// AddLocation appends a coordinate pair to the trip.
func (s *TripStore) AddLocation(tripID int64, lat, lng float64) (core.Trip, error) {
	loc := core.Location{Lat: lat, Lng: lng}
	if err := validateStruct(loc, ""); err != nil {
		return core.Trip{}, err
	}
	trip, err := s.trips.Update(tripID, func(t *core.Trip) {
		t.Locations = append(t.Locations, loc)
	})
	return trip, tripErr(tripID, err)
}

func (s *TripStore) Delete(id int64) error {
	return s.trips.Remove(id)
}

func (s *TripStore) Subscribe(fn func([]core.Trip)) (unsubscribe func()) {
	return s.trips.Subscribe(fn)
}

func tripErr(id int64, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("trip %d: %w", id, core.ErrTripNotFound)
	}
	return err
}
