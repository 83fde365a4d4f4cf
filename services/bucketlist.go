package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lborres/reisetagebuch/core"
)

const (
	// SortBucket orders remote bucket items ascending
	SortBucket = "year"

	// ActionBucketUpsert is logged after every bucket-list upsert
	ActionBucketUpsert = "bucket.upsert"
)

// BucketlistService serves bucket-list items from the bucketlist collection
type BucketlistService struct {
	remote
	audit core.AuditHandler
}

// Ensure BucketlistService implements BucketHandler
var _ core.BucketHandler = (*BucketlistService)(nil)

// NewBucketlistService creates the service. audit may be nil.
func NewBucketlistService(cfg RemoteConfig, audit core.AuditHandler) *BucketlistService {
	return &BucketlistService{remote: remote{cfg.withDefaults()}, audit: audit}
}

// ListBucket returns the items of userID ordered by year
func (s *BucketlistService) ListBucket(ctx context.Context, userID string) (*core.BucketList, error) {
	if !s.configured() {
		return &core.BucketList{Items: []core.BucketRecord{}, Skipped: SkippedUnconfigured}, nil
	}

	userID = strings.TrimSpace(userID)
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}

	col, err := s.collection(ctx, core.CollectionBucketList)
	if err != nil {
		return nil, err
	}

	docs, err := col.FindByOwner(ctx, userID, SortBucket)
	if err != nil {
		return nil, fmt.Errorf("list bucket items: %w", err)
	}

	items := make([]core.BucketRecord, 0, len(docs))
	for _, doc := range docs {
		items = append(items, core.MapBucketDoc(doc))
	}
	return &core.BucketList{Items: items}, nil
}

// UpsertBucket creates or replaces an item keyed by its id and records an audit entry.
// A failed audit entry is logged and does not fail the upsert.
func (s *BucketlistService) UpsertBucket(ctx context.Context, doc core.BucketDoc, images []string, meta core.RequestMeta) (*core.BucketRecord, error) {
	if !s.configured() {
		return nil, core.ErrUnconfigured
	}

	if err := validateStruct(doc, "item."); err != nil {
		return nil, err
	}

	if images == nil {
		images = doc.Images
	}
	images, err := s.Images.Normalize(ctx, core.CollectionBucketList+"/"+doc.UserID, images)
	if err != nil {
		return nil, err
	}

	col, err := s.collection(ctx, core.CollectionBucketList)
	if err != nil {
		return nil, err
	}

	fields := doc.Document(images)
	if err := col.Upsert(ctx, core.FieldID, doc.ID, fields, s.now()); err != nil {
		return nil, fmt.Errorf("upsert bucket item: %w", err)
	}

	s.logUpsert(ctx, doc, meta)

	item := core.MapBucketDoc(fields.WithID(doc.ID))
	return &item, nil
}

func (s *BucketlistService) logUpsert(ctx context.Context, doc core.BucketDoc, meta core.RequestMeta) {
	if s.audit == nil {
		return
	}

	itemID, userID := doc.ID, doc.UserID
	_, err := s.audit.AppendLog(ctx, core.BucketLog{
		Action: ActionBucketUpsert,
		ItemID: &itemID,
		UserID: &userID,
		Metadata: map[string]any{
			"title": doc.Title,
		},
	}, meta)
	if err != nil {
		s.Logger.Warn("bucket audit entry failed",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()),
		)
	}
}
