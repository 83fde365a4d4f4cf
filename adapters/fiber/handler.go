package fiber

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/reisetagebuch/core"
	"github.com/lborres/reisetagebuch/services"
)

type handlers struct {
	app    *core.App
	logger *slog.Logger
}

func (h *handlers) byOperation() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		services.OpListBucket:   h.listBucket,
		services.OpUpsertBucket: h.upsertBucket,
		services.OpAppendLog:    h.appendLog,
		services.OpSyncProfile:  h.syncProfile,
		services.OpListTrips:    h.listTrips,
		services.OpUpsertTrip:   h.upsertTrip,
		services.OpGetTrip:      h.getTrip,
		services.OpHealth:       h.health,
	}
}

type bucketUpsertRequest struct {
	Item   core.BucketDoc `json:"item"`
	Images []string       `json:"images"`
}

type tripUpsertRequest struct {
	Trip   core.ReiseDoc `json:"trip"`
	Images []string      `json:"images"`
}

type bucketListResponse struct {
	core.Response
	Bucketlist []core.BucketRecord `json:"bucketlist"`
}

type bucketItemResponse struct {
	core.Response
	Item *core.BucketRecord `json:"item"`
}

type tripListResponse struct {
	core.Response
	Trips []core.TripRecord `json:"trips"`
}

type tripResponse struct {
	core.Response
	Trip *core.TripRecord `json:"trip"`
}

type healthResponse struct {
	core.Response
	DocumentStore string `json:"document_store"`
}

func (h *handlers) listBucket(c fiber.Ctx) error {
	list, err := h.app.Bucket.ListBucket(c.Context(), c.Query("user_id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(bucketListResponse{
		Response:   core.Response{OK: true, Skipped: list.Skipped},
		Bucketlist: list.Items,
	})
}

func (h *handlers) upsertBucket(c fiber.Ctx) error {
	var input bucketUpsertRequest
	if err := c.Bind().Body(&input); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	item, err := h.app.Bucket.UpsertBucket(c.Context(), input.Item, input.Images, requestMeta(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(bucketItemResponse{
		Response: core.Response{OK: true},
		Item:     item,
	})
}

func (h *handlers) appendLog(c fiber.Ctx) error {
	var input core.BucketLog
	if err := c.Bind().Body(&input); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	skipped, err := h.app.Audit.AppendLog(c.Context(), input, requestMeta(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(core.Response{OK: true, Skipped: skipped})
}

func (h *handlers) syncProfile(c fiber.Ctx) error {
	var input core.ProfileSync
	if err := c.Bind().Body(&input); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	skipped, err := h.app.ProfileSync.SyncProfile(c.Context(), input)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(core.Response{OK: true, Skipped: skipped})
}

func (h *handlers) listTrips(c fiber.Ctx) error {
	list, err := h.app.Trips.ListTrips(c.Context(), c.Query("user_id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(tripListResponse{
		Response: core.Response{OK: true, Skipped: list.Skipped},
		Trips:    list.Trips,
	})
}

func (h *handlers) upsertTrip(c fiber.Ctx) error {
	var input tripUpsertRequest
	if err := c.Bind().Body(&input); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	trip, err := h.app.Trips.UpsertTrip(c.Context(), input.Trip, input.Images)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(tripResponse{
		Response: core.Response{OK: true},
		Trip:     trip,
	})
}

func (h *handlers) getTrip(c fiber.Ctx) error {
	result, err := h.app.Trips.GetTrip(c.Context(), c.Params("id"), c.Query("user_id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(tripResponse{
		Response: core.Response{OK: true, Skipped: result.Skipped},
		Trip:     result.Trip,
	})
}

func (h *handlers) health(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(healthResponse{
		Response:      core.Response{OK: true},
		DocumentStore: h.app.Documents.State().String(),
	})
}

func requestMeta(c fiber.Ctx) core.RequestMeta {
	return core.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func invalidBody(err error) error {
	return fmt.Errorf("%w: %v", core.ErrInvalidBody, err)
}

// handleError writes the error envelope. Server-side failures are logged
// and their message is still returned to the client.
// requireDocuments answers 503 before the body is read when no document store is configured
func (h *handlers) requireDocuments(next fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !h.app.Documents.Configured() {
			return h.handleError(c, core.ErrUnconfigured)
		}
		return next(c)
	}
}

func (h *handlers) handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return c.Status(status).JSON(core.Response{
		OK:    false,
		Error: err.Error(),
	})
}

// mapErrorToStatus maps core error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrInvalidBody),
		errors.Is(err, core.ErrInvalidImage):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrTripNotFound),
		errors.Is(err, core.ErrProfileNotFound),
		errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrUserExists):
		return http.StatusConflict

	case errors.Is(err, core.ErrNotVerified):
		return http.StatusForbidden

	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrUnconfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
