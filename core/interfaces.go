package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// LOCAL STORAGE PORT
// ============================================

// KVStorage is a persistent key-value store holding one serialized value per key.
// A nil KVStorage means no persistent backend is available.
type KVStorage interface {
	GetItem(key string) ([]byte, bool, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
}

// Local storage keys
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyProfiles    = "profiles"
	KeyBucketList  = "bucketlist"
	KeyTrips       = "trips"
)

// ============================================
// DOCUMENT STORE PORTS
// ============================================

// Remote collections
const (
	CollectionBucketList = "bucketlist"
	CollectionReisen     = "reisen"
	CollectionBucketLogs = "bucketlist_logs"
	CollectionUsers      = "users"
)

// Collections lists every collection a DocumentStorage must serve.
var Collections = []string{CollectionBucketList, CollectionReisen, CollectionBucketLogs, CollectionUsers}

// Document field names shared by all backends
const (
	FieldID        = "_id"
	FieldUserID    = "user_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// DocumentCollection is a named collection of schema-flexible documents
type DocumentCollection interface {
	// FindByOwner returns every document whose user_id equals ownerID,
	// sorted ascending by sortKey.
	FindByOwner(ctx context.Context, ownerID, sortKey string) ([]RawDocument, error)

	// FindOne returns the document matching both id and ownerID, or ErrNotFound.
	FindOne(ctx context.Context, id, ownerID string) (RawDocument, error)

	// Upsert atomically inserts or updates the document whose matchField equals
	// matchValue. All supplied fields are replaced, updated_at is set to now and
	// created_at is set to now only when the document is inserted.
	Upsert(ctx context.Context, matchField, matchValue string, fields RawDocument, now time.Time) error

	// Insert writes a new document.
	Insert(ctx context.Context, doc RawDocument) error
}

// DocumentStorage vends collections of a single document database
type DocumentStorage interface {
	Collection(name string) (DocumentCollection, error)
}

// DocumentProvider hands out the process-wide DocumentStorage connection
type DocumentProvider interface {
	Storage(ctx context.Context) (DocumentStorage, error)
	Configured() bool
	State() ProviderState
}

// ============================================
// OBJECT STORAGE PORT
// ============================================

// ImageStorage stores uploaded photos and returns a URL clients can load them from
type ImageStorage interface {
	PutImage(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// ============================================
// HANDLERS (for HTTP adapters)
// ============================================

// TripHandler provides remote trip operations
type TripHandler interface {
	ListTrips(ctx context.Context, userID string) (*TripList, error)
	GetTrip(ctx context.Context, id, userID string) (*TripResult, error)
	UpsertTrip(ctx context.Context, doc ReiseDoc, images []string) (*TripRecord, error)
}

// BucketHandler provides remote bucket-list operations
type BucketHandler interface {
	ListBucket(ctx context.Context, userID string) (*BucketList, error)
	UpsertBucket(ctx context.Context, doc BucketDoc, images []string, meta RequestMeta) (*BucketRecord, error)
}

// AuditHandler appends bucket-list audit entries.
// A non-empty skipped reason means nothing was written.
type AuditHandler interface {
	AppendLog(ctx context.Context, entry BucketLog, meta RequestMeta) (skipped string, err error)
}

// ProfileSyncHandler mirrors user profiles into the document store
type ProfileSyncHandler interface {
	SyncProfile(ctx context.Context, profile ProfileSync) (skipped string, err error)
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(app *App) error
}
