package core

import "log/slog"

type Config struct {
	Documents DocumentProvider

	HTTP HTTPAdapter

	// Optional config
	Images   ImageStorage
	Logger   *slog.Logger
	BasePath string
}

type App struct {
	Trips       TripHandler
	Bucket      BucketHandler
	Audit       AuditHandler
	ProfileSync ProfileSyncHandler
	Documents   DocumentProvider
	Logger      *slog.Logger
	BasePath    string
}
