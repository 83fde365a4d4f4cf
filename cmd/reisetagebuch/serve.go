package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lborres/reisetagebuch"
	fiberadapter "github.com/lborres/reisetagebuch/adapters/fiber"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	documents, err := c.documentProvider()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := documents.Close(closeCtx); err != nil {
			c.logger.Error("closing document store", slog.String("error", err.Error()))
		}
	}()

	images, err := c.imageStorage(ctx)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{AppName: "reisetagebuch"})

	opts := []fiberadapter.Option{fiberadapter.WithLogger(c.logger)}
	if c.cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, fiberadapter.WithMetrics(fiberadapter.NewMetrics(reg)))
	}

	cfg := reisetagebuch.Config{
		Documents: documents,
		HTTP:      fiberadapter.New(app, opts...),
		Logger:    c.logger,
	}
	// A nil *s3.Store must not become a non-nil interface.
	if images != nil {
		cfg.Images = images
	}

	if _, err := reisetagebuch.New(cfg); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("listening", slog.String("addr", c.cfg.HTTPAddr))
		errCh <- app.Listen(c.cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
