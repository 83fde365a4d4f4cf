package core

import "time"

// StoredUser is a locally registered account
//
// Passwords are stored as produced by the configured PasswordHandler,
// which is the raw password for the default plaintext handler.
type StoredUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
	Verified  bool   `json:"verified"`
}

func (u StoredUser) RecordID() int64 { return u.ID }

// AuthState is the observable state of the auth store
type AuthState struct {
	User *StoredUser `json:"user"`
}

// Location is a single point attached to a trip
type Location struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Trip is the locally stored travel record
type Trip struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Country     string     `json:"country"`
	Year        int        `json:"year"`
	WithWhom    string     `json:"withWhom"`
	CoverImage  *string    `json:"coverImage"`
	Description string     `json:"description"`
	Photos      []string   `json:"photos"`
	Locations   []Location `json:"locations"`
}

func (t Trip) RecordID() int64 { return t.ID }
func (t Trip) OwnerID() int64  { return t.UserID }

// TripInput holds the fields accepted when creating a local trip
type TripInput struct {
	Title       string  `json:"title" validate:"required"`
	Country     string  `json:"country"`
	Year        int     `json:"year"`
	WithWhom    string  `json:"withWhom"`
	Description string  `json:"description"`
	CoverImage  *string `json:"coverImage,omitempty"`
}

// TripPatch is a shallow merge patch; nil fields keep their value
type TripPatch struct {
	Title       *string     `json:"title,omitempty"`
	Country     *string     `json:"country,omitempty"`
	Year        *int        `json:"year,omitempty"`
	WithWhom    *string     `json:"withWhom,omitempty"`
	Description *string     `json:"description,omitempty"`
	CoverImage  *string     `json:"coverImage,omitempty"`
	Photos      *[]string   `json:"photos,omitempty"`
	Locations   *[]Location `json:"locations,omitempty"`

	// ClearCoverImage resets the cover to null and wins over CoverImage.
	ClearCoverImage bool `json:"clearCoverImage,omitempty"`
}

// BucketItem is a locally stored bucket-list goal
type BucketItem struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId,omitempty"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	TargetYear *int   `json:"targetYear"`
	Done       bool   `json:"done"`
}

func (b BucketItem) RecordID() int64 { return b.ID }
func (b BucketItem) OwnerID() int64  { return b.UserID }

// BucketInput holds the fields accepted when creating a bucket item
type BucketInput struct {
	UserID     int64   `json:"userId,omitempty"`
	Title      string  `json:"title" validate:"required"`
	Category   *string `json:"category,omitempty"`
	TargetYear *int    `json:"targetYear,omitempty"`
}

// BucketPatch is a shallow merge patch; nil fields keep their value
type BucketPatch struct {
	Title      *string `json:"title,omitempty"`
	Category   *string `json:"category,omitempty"`
	TargetYear *int    `json:"targetYear,omitempty"`
	Done       *bool   `json:"done,omitempty"`

	// ClearTargetYear resets the target year to null and wins over TargetYear.
	ClearTargetYear bool `json:"clearTargetYear,omitempty"`
}

// Profile is the per-user profile record, keyed by the owning user
type Profile struct {
	UserID    int64   `json:"userId"`
	Bio       string  `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

func (p Profile) RecordID() int64 { return p.UserID }
func (p Profile) OwnerID() int64  { return p.UserID }

// ProfilePatch is a shallow merge patch; nil fields keep their value
type ProfilePatch struct {
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`

	// ClearAvatarURL resets the avatar to null and wins over AvatarURL.
	ClearAvatarURL bool `json:"clearAvatarUrl,omitempty"`
}

// RawDocument is a document as read from or written to a document store.
// It only appears at the storage boundary.
type RawDocument map[string]any

// ReiseDoc is the remote trip document as written by an upsert
type ReiseDoc struct {
	ID            string   `json:"id" validate:"required"`
	UserID        string   `json:"user_id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Location      *string  `json:"location,omitempty"`
	WithWhom      *string  `json:"with_whom,omitempty"`
	Cost          *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Rating        *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Description   *string  `json:"description,omitempty"`
	StartDate     *string  `json:"start_date,omitempty"`
	EndDate       *string  `json:"end_date,omitempty"`
	Lat           *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng           *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	Images        []string `json:"images,omitempty"`
	CoverImageURL *string  `json:"cover_image_url,omitempty"`
}

// BucketDoc is the remote bucket-list document as written by an upsert
type BucketDoc struct {
	ID            string   `json:"id" validate:"required"`
	UserID        string   `json:"user_id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Location      *string  `json:"location,omitempty"`
	Year          *string  `json:"year,omitempty"`
	Lat           *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng           *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	Images        []string `json:"images,omitempty"`
	CoverImageURL *string  `json:"cover_image_url,omitempty"`
}

// TripRecord is the canonical trip returned to API clients
type TripRecord struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Title         string   `json:"title"`
	Location      *string  `json:"location"`
	WithWhom      *string  `json:"with_whom"`
	Cost          *float64 `json:"cost"`
	Rating        *float64 `json:"rating"`
	Description   *string  `json:"description"`
	StartDate     *string  `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	Images        []string `json:"images"`
	CoverImageURL *string  `json:"cover_image_url"`
}

// BucketRecord is the canonical bucket-list item returned to API clients
type BucketRecord struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Title         string   `json:"title"`
	Location      *string  `json:"location"`
	Year          *string  `json:"year"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	Images        []string `json:"images"`
	CoverImageURL *string  `json:"cover_image_url"`
}

// BucketLog is a write-once audit entry
type BucketLog struct {
	ID        string         `json:"id"`
	Action    string         `json:"action" validate:"required"`
	ItemID    *string        `json:"item_id,omitempty"`
	UserID    *string        `json:"user_id,omitempty"`
	Message   *string        `json:"message,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IP        string         `json:"ip"`
	UserAgent string         `json:"user_agent"`
	CreatedAt time.Time      `json:"created_at"`
}

// ProfileSync is the profile snapshot pushed to the remote users collection
type ProfileSync struct {
	ID        string         `json:"id" validate:"required"`
	Email     *string        `json:"email,omitempty"`
	FullName  *string        `json:"full_name,omitempty"`
	FirstName *string        `json:"first_name,omitempty"`
	LastName  *string        `json:"last_name,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RequestMeta describes the client that issued a request
type RequestMeta struct {
	IP        string
	UserAgent string
}

// TripList is the result of listing remote trips.
// Skipped is set when the document store is not configured.
type TripList struct {
	Trips   []TripRecord
	Skipped string
}

// TripResult is the result of a remote point lookup
type TripResult struct {
	Trip    *TripRecord
	Skipped string
}

// BucketList is the result of listing remote bucket items
type BucketList struct {
	Items   []BucketRecord
	Skipped string
}
