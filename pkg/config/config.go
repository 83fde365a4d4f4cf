package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/lborres/reisetagebuch/core"
)

// ErrUnsupportedBackend is core.ErrUnsupportedBackend, re-exported for callers of Load.
var ErrUnsupportedBackend = core.ErrUnsupportedBackend

type Backend int

const (
	BackendNone Backend = iota
	BackendMongo
	BackendPostgres
)

func (b Backend) String() string {
	switch b {
	case BackendMongo:
		return "mongodb"
	case BackendPostgres:
		return "postgres"
	default:
		return "none"
	}
}

type App struct {
	// HTTP
	HTTPAddr       string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	// Document store. Empty leaves the remote endpoints unconfigured.
	DocumentStoreURI      string `envconfig:"DOCUMENT_STORE_URI"`
	DocumentStoreDatabase string `envconfig:"DOCUMENT_STORE_DATABASE" default:"reisetagebuch"`
	AutoMigrate           bool   `envconfig:"AUTO_MIGRATE" default:"false"`
	// Local store. Empty keeps local data in memory.
	LocalStorePath string `envconfig:"LOCAL_STORE_PATH"`
	// Auth
	PasswordHasher string `envconfig:"PASSWORD_HASHER" default:"plaintext"`
	VerifyBaseURL  string `envconfig:"VERIFY_BASE_URL" default:"http://localhost:5173"`
	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	// Photo object storage. Empty bucket keeps images inline.
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3PublicURL string `envconfig:"S3_PUBLIC_URL"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (App, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("load env file: %w", err)
	}

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, err
	}
	if _, err := c.Backend(); err != nil {
		return App{}, err
	}
	return c, nil
}

// Backend picks the document store implementation from the URI scheme
func (c App) Backend() (Backend, error) {
	uri := strings.TrimSpace(c.DocumentStoreURI)
	switch {
	case uri == "":
		return BackendNone, nil
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return BackendMongo, nil
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return BackendPostgres, nil
	default:
		scheme, _, _ := strings.Cut(uri, "://")
		return BackendNone, fmt.Errorf("%w: %q", ErrUnsupportedBackend, scheme)
	}
}
