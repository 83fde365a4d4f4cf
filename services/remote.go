package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lborres/reisetagebuch/core"
)

// SkippedUnconfigured is reported by reads when no document store is configured
const SkippedUnconfigured = "document store disabled (DOCUMENT_STORE_URI missing)"

// RemoteConfig carries the collaborators shared by the document-store services
type RemoteConfig struct {
	Documents core.DocumentProvider
	Images    *ImageUploader
	Logger    *slog.Logger
	// Now stamps created_at and updated_at. Defaults to time.Now.
	Now func() time.Time
}

func (c RemoteConfig) withDefaults() RemoteConfig {
	if c.Documents == nil {
		c.Documents = core.NewStorageProvider(nil)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// remote resolves collections through the shared provider
type remote struct {
	RemoteConfig
}

func (r remote) configured() bool {
	return r.Documents.Configured()
}

func (r remote) collection(ctx context.Context, name string) (core.DocumentCollection, error) {
	storage, err := r.Documents.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	col, err := storage.Collection(name)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", name, err)
	}
	return col, nil
}

func (r remote) now() time.Time {
	return r.Now().UTC()
}

func requireField(name, value string) error {
	if value == "" {
		return &core.ValidationError{Fields: []string{name}, Message: name + " is required"}
	}
	return nil
}
