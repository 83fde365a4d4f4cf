package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lborres/reisetagebuch/adapters/mongo"
	pgxadapter "github.com/lborres/reisetagebuch/adapters/pgx"
	"github.com/lborres/reisetagebuch/adapters/s3"
	"github.com/lborres/reisetagebuch/core"
	"github.com/lborres/reisetagebuch/pkg/config"
	"github.com/lborres/reisetagebuch/pkg/logging"
)

// cli carries what every command needs once the root pre-run has loaded it
type cli struct {
	cfg    config.App
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "reisetagebuch",
		Short: "Travel journal API and local store",
		Long: `reisetagebuch serves the travel journal API and manages the local journal.

Configuration is read from the environment and an optional .env file:
  DOCUMENT_STORE_URI   mongodb:// or postgres:// (empty disables remote endpoints)
  LOCAL_STORE_PATH     badger directory for local commands (empty keeps data in memory)
  HTTP_ADDR            listen address for serve (default :8080)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newLocalCmd(c),
	)
	return root
}

// documentProvider picks the backend from the URI scheme. Without a URI the
// provider is permanently unconfigured.
func (c *cli) documentProvider() (*core.StorageProvider, error) {
	backend, err := c.cfg.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendMongo:
		return core.NewStorageProvider(mongo.Dial(c.cfg.DocumentStoreURI, c.cfg.DocumentStoreDatabase, c.logger)), nil
	case config.BackendPostgres:
		return core.NewStorageProvider(pgxadapter.Dial(c.cfg.DocumentStoreURI, c.cfg.AutoMigrate, c.logger)), nil
	default:
		c.logger.Warn("document store disabled (DOCUMENT_STORE_URI missing)")
		return core.NewStorageProvider(nil), nil
	}
}

// imageStorage returns nil when no bucket is configured
func (c *cli) imageStorage(ctx context.Context) (core.ImageStorage, error) {
	if c.cfg.S3Bucket == "" {
		return nil, nil
	}
	store, err := s3.New(ctx, s3.Config{
		Bucket:    c.cfg.S3Bucket,
		Region:    c.cfg.S3Region,
		Endpoint:  c.cfg.S3Endpoint,
		AccessKey: c.cfg.S3AccessKey,
		SecretKey: c.cfg.S3SecretKey,
		PublicURL: c.cfg.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}
	return store, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
