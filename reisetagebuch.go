package reisetagebuch

import (
	"log/slog"

	"github.com/lborres/reisetagebuch/core"
	"github.com/lborres/reisetagebuch/services"
)

// interfaces
type (
	KVStorage          = core.KVStorage
	DocumentStorage    = core.DocumentStorage
	DocumentCollection = core.DocumentCollection
	DocumentProvider   = core.DocumentProvider
	ImageStorage       = core.ImageStorage

	HTTPAdapter = core.HTTPAdapter

	TripHandler        = core.TripHandler
	BucketHandler      = core.BucketHandler
	AuditHandler       = core.AuditHandler
	ProfileSyncHandler = core.ProfileSyncHandler

	PasswordHandler = core.PasswordHandler
)

// structs
type (
	App             = core.App
	Config          = core.Config
	StorageProvider = core.StorageProvider
	ProviderState   = core.ProviderState
)

type (
	StoredUser   = core.StoredUser
	Profile      = core.Profile
	Trip         = core.Trip
	Location     = core.Location
	BucketItem   = core.BucketItem
	ReiseDoc     = core.ReiseDoc
	BucketDoc    = core.BucketDoc
	TripRecord   = core.TripRecord
	BucketRecord = core.BucketRecord
	BucketLog    = core.BucketLog
	ProfileSync  = core.ProfileSync
	RawDocument  = core.RawDocument
	RequestMeta  = core.RequestMeta
)

const (
	defaultBasePath = "/api"
)

// Constructors & helpers (convenience re-exports)
var (
	NewStorageProvider = core.NewStorageProvider
	NewArgon2          = core.NewArgon2
	NewPasswordHandler = core.NewPasswordHandler
	TripToReiseDoc     = core.TripToReiseDoc
	TripFromRecord     = core.TripFromRecord
	MapReiseDoc        = core.MapReiseDoc
	MapBucketDoc       = core.MapBucketDoc
)

var (
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
	ErrNotVerified        = core.ErrNotVerified
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrNotFound        = core.ErrNotFound
	ErrTripNotFound    = core.ErrTripNotFound
	ErrProfileNotFound = core.ErrProfileNotFound
)

var (
	ErrValidation   = core.ErrValidation
	ErrInvalidEmail = core.ErrInvalidEmail
	ErrInvalidBody  = core.ErrInvalidBody
	ErrInvalidImage = core.ErrInvalidImage
)

var (
	ErrUnconfigured        = core.ErrUnconfigured
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrStorageRequired     = core.ErrStorageRequired
)

// New wires the remote services and registers the HTTP routes.
// An unconfigured document store is passed as NewStorageProvider(nil).
func New(config Config) (*App, error) {
	if config.Documents == nil {
		return nil, ErrStorageRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	var images *services.ImageUploader
	if config.Images != nil {
		images = services.NewImageUploader(config.Images, logger)
	}

	remote := services.RemoteConfig{
		Documents: config.Documents,
		Images:    images,
		Logger:    logger,
	}
	audit := services.NewAuditService(remote)

	app := &App{
		Trips:       services.NewReisenService(remote),
		Bucket:      services.NewBucketlistService(remote, audit),
		Audit:       audit,
		ProfileSync: services.NewProfileSyncService(remote),
		Documents:   config.Documents,
		Logger:      logger,
		BasePath:    basePath,
	}

	if err := config.HTTP.RegisterRoutes(app); err != nil {
		return nil, err
	}

	return app, nil
}

// LocalConfig configures the on-device stores
type LocalConfig struct {
	// KV persists every collection. Nil keeps data in memory only for the
	// lifetime of each store call.
	KV             KVStorage
	PasswordHasher PasswordHandler
	VerifyBaseURL  string
	Logger         *slog.Logger
}

// Local bundles the on-device stores. They share one id clock so ids stay
// unique across collections.
type Local struct {
	Auth     *services.AuthStore
	Profiles *services.ProfileStore
	Trips    *services.TripStore
	Bucket   *services.BucketStore
}

func NewLocal(config LocalConfig) *Local {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ids := services.NewIDClock()

	return &Local{
		Auth: services.NewAuthStore(config.KV, services.AuthConfig{
			PasswordHasher: config.PasswordHasher,
			VerifyBaseURL:  config.VerifyBaseURL,
			IDs:            ids,
			Logger:         logger,
		}),
		Profiles: services.NewProfileStore(config.KV, logger),
		Trips:    services.NewTripStore(config.KV, ids, logger),
		Bucket:   services.NewBucketStore(config.KV, ids, logger),
	}
}
