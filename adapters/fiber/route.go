package fiber

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/reisetagebuch/core"
	"github.com/lborres/reisetagebuch/services"
)

type Adapter struct {
	app     *fiber.App
	logger  *slog.Logger
	metrics *Metrics
}

var _ core.HTTPAdapter = (*Adapter)(nil)

type Option func(*Adapter)

// WithLogger sets the logger used for request and error logs
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithMetrics records request metrics and serves them at /metrics
func WithMetrics(m *Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

func New(app *fiber.App, opts ...Option) *Adapter {
	a := &Adapter{app: app}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// RegisterRoutes mounts every endpoint of the registry under the base path.
// Middleware is installed first so it wraps all API routes.
func (a *Adapter) RegisterRoutes(app *core.App) error {
	h := &handlers{app: app, logger: a.logger}
	byOperation := h.byOperation()

	a.app.Use(requestLogger(a.logger))
	if a.metrics != nil {
		a.app.Use(a.metrics.Middleware())
		a.app.Get("/metrics", a.metrics.Handler())
	}

	api := a.app.Group(app.BasePath)
	for _, ep := range services.NewEndpointRegistry().Endpoints() {
		handler, ok := byOperation[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no handler for operation %s (%s %s)", ep.Metadata.OperationID, ep.Method, ep.Path)
		}
		if ep.Metadata.Write {
			handler = h.requireDocuments(handler)
		}
		api.Add([]string{ep.Method}, ep.Path, handler)
	}

	return nil
}
