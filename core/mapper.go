package core

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MapReiseDoc normalizes a stored trip document into the response shape.
// Missing scalars become nil, a missing image list becomes empty.
func MapReiseDoc(raw RawDocument) TripRecord {
	images := raw.strings("images")
	return TripRecord{
		ID:            raw.id(),
		UserID:        raw.text(FieldUserID),
		Title:         raw.text("title"),
		Location:      raw.optString("location"),
		WithWhom:      raw.optString("with_whom"),
		Cost:          raw.optNumber("cost"),
		Rating:        raw.optNumber("rating"),
		Description:   raw.optString("description"),
		StartDate:     raw.optString("start_date"),
		EndDate:       raw.optString("end_date"),
		Lat:           raw.optNumber("lat"),
		Lng:           raw.optNumber("lng"),
		Images:        images,
		CoverImageURL: CoverImage(raw.optString("cover_image_url"), images),
	}
}

// MapBucketDoc normalizes a stored bucket-list document into the response shape.
func MapBucketDoc(raw RawDocument) BucketRecord {
	images := raw.strings("images")
	return BucketRecord{
		ID:            raw.id(),
		UserID:        raw.text(FieldUserID),
		Title:         raw.text("title"),
		Location:      raw.optString("location"),
		Year:          raw.optString("year"),
		Lat:           raw.optNumber("lat"),
		Lng:           raw.optNumber("lng"),
		Images:        images,
		CoverImageURL: CoverImage(raw.optString("cover_image_url"), images),
	}
}

// CoverImage returns the explicit cover when set, else the first image, else nil.
func CoverImage(explicit *string, images []string) *string {
	if explicit != nil && *explicit != "" {
		return explicit
	}
	if len(images) > 0 {
		first := images[0]
		return &first
	}
	return nil
}

// Document returns the fields written by a trip upsert. The id is the match
// key and is not part of the returned fields. Unset optionals are written as nil.
func (d ReiseDoc) Document(images []string) RawDocument {
	if images == nil {
		images = []string{}
	}
	return RawDocument{
		FieldUserID:       d.UserID,
		"title":           d.Title,
		"location":        d.Location,
		"with_whom":       d.WithWhom,
		"cost":            d.Cost,
		"rating":          d.Rating,
		"description":     d.Description,
		"start_date":      d.StartDate,
		"end_date":        d.EndDate,
		"lat":             d.Lat,
		"lng":             d.Lng,
		"images":          images,
		"cover_image_url": CoverImage(d.CoverImageURL, images),
	}
}

// Document returns the fields written by a bucket-list upsert.
func (d BucketDoc) Document(images []string) RawDocument {
	if images == nil {
		images = []string{}
	}
	return RawDocument{
		FieldUserID:       d.UserID,
		"title":           d.Title,
		"location":        d.Location,
		"year":            d.Year,
		"lat":             d.Lat,
		"lng":             d.Lng,
		"images":          images,
		"cover_image_url": CoverImage(d.CoverImageURL, images),
	}
}

// Document returns the fields written by a profile sync.
func (p ProfileSync) Document() RawDocument {
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return RawDocument{
		FieldUserID:  p.ID,
		"email":      p.Email,
		"full_name":  p.FullName,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"metadata":   metadata,
	}
}

// Document returns the audit entry as inserted into the log collection.
func (l BucketLog) Document() RawDocument {
	doc := RawDocument{
		FieldID:        l.ID,
		"action":       l.Action,
		"ip":           l.IP,
		"user_agent":   l.UserAgent,
		FieldCreatedAt: l.CreatedAt,
	}
	if l.ItemID != nil {
		doc["item_id"] = *l.ItemID
	}
	if l.UserID != nil {
		doc[FieldUserID] = *l.UserID
	}
	if l.Message != nil {
		doc["message"] = *l.Message
	}
	if l.Metadata != nil {
		doc["metadata"] = l.Metadata
	}
	return doc
}

// WithID returns a copy of the document carrying id under FieldID.
func (r RawDocument) WithID(id string) RawDocument {
	out := make(RawDocument, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[FieldID] = id
	return out
}

// id coerces the backend identifier to a string. Mongo object ids expose Hex.
func (r RawDocument) id() string {
	v, ok := r[FieldID]
	if !ok || v == nil {
		v = r["id"]
	}
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case interface{ Hex() string }:
		return id.Hex()
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

func (r RawDocument) text(key string) string {
	if s := r.optString(key); s != nil {
		return *s
	}
	return ""
}

func (r RawDocument) optString(key string) *string {
	switch v := r[key].(type) {
	case nil:
		return nil
	case string:
		return &v
	case *string:
		return v
	case float64, float32, int, int32, int64, json.Number:
		n := r.optNumber(key)
		if n == nil {
			return nil
		}
		s := strconv.FormatFloat(*n, 'f', -1, 64)
		return &s
	case fmt.Stringer:
		s := v.String()
		return &s
	default:
		return nil
	}
}

func (r RawDocument) optNumber(key string) *float64 {
	var f float64
	switch v := r[key].(type) {
	case float64:
		f = v
	case *float64:
		return v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func (r RawDocument) strings(key string) []string {
	out := []string{}
	switch v := r[key].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
