package core

import (
	"fmt"
	"strconv"
	"strings"
)

// TripToReiseDoc converts a locally stored trip into the remote document shape.
//
// The year becomes a January 1st start date so remote trips sort the same way
// local ones do. Only the first location is carried, the remote shape has one.
func TripToReiseDoc(trip Trip) ReiseDoc {
	doc := ReiseDoc{
		ID:            strconv.FormatInt(trip.ID, 10),
		UserID:        strconv.FormatInt(trip.UserID, 10),
		Title:         trip.Title,
		Location:      nonEmpty(trip.Country),
		WithWhom:      nonEmpty(trip.WithWhom),
		Description:   nonEmpty(trip.Description),
		Images:        append([]string{}, trip.Photos...),
		CoverImageURL: trip.CoverImage,
	}
	if trip.Year > 0 {
		start := fmt.Sprintf("%04d-01-01", trip.Year)
		doc.StartDate = &start
	}
	if len(trip.Locations) > 0 {
		lat, lng := trip.Locations[0].Lat, trip.Locations[0].Lng
		doc.Lat, doc.Lng = &lat, &lng
	}
	return doc
}

// TripFromRecord converts a remote trip back into the local shape.
// Remote ids that are not numeric cannot become local ids.
func TripFromRecord(rec TripRecord) (Trip, error) {
	id, err := strconv.ParseInt(rec.ID, 10, 64)
	if err != nil {
		return Trip{}, &ValidationError{Fields: []string{"id"}, Message: fmt.Sprintf("trip id %q is not numeric", rec.ID)}
	}
	userID, err := strconv.ParseInt(rec.UserID, 10, 64)
	if err != nil {
		return Trip{}, &ValidationError{Fields: []string{"user_id"}, Message: fmt.Sprintf("user id %q is not numeric", rec.UserID)}
	}

	trip := Trip{
		ID:          id,
		UserID:      userID,
		Title:       rec.Title,
		Country:     deref(rec.Location),
		WithWhom:    deref(rec.WithWhom),
		Description: deref(rec.Description),
		CoverImage:  rec.CoverImageURL,
		Photos:      append([]string{}, rec.Images...),
		Locations:   []Location{},
	}
	if rec.StartDate != nil {
		year, _, _ := strings.Cut(*rec.StartDate, "-")
		if y, err := strconv.Atoi(year); err == nil {
			trip.Year = y
		}
	}
	if rec.Lat != nil && rec.Lng != nil {
		trip.Locations = append(trip.Locations, Location{Lat: *rec.Lat, Lng: *rec.Lng})
	}
	return trip, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
