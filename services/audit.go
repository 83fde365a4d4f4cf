package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lborres/reisetagebuch/core"
)

// AuditService appends write-once entries to the bucketlist_logs collection
type AuditService struct {
	remote
}

// Ensure AuditService implements AuditHandler
var _ core.AuditHandler = (*AuditService)(nil)

func NewAuditService(cfg RemoteConfig) *AuditService {
	return &AuditService{remote{cfg.withDefaults()}}
}

// AppendLog stores entry enriched with the client address, user agent and server time
func (s *AuditService) AppendLog(ctx context.Context, entry core.BucketLog, meta core.RequestMeta) (string, error) {
	if !s.configured() {
		return SkippedUnconfigured, nil
	}

	if err := validateStruct(entry, ""); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate log id: %w", err)
	}
	entry.ID = id.String()
	entry.IP = meta.IP
	entry.UserAgent = meta.UserAgent
	entry.CreatedAt = s.now()

	col, err := s.collection(ctx, core.CollectionBucketLogs)
	if err != nil {
		return "", err
	}
	if err := col.Insert(ctx, entry.Document()); err != nil {
		return "", fmt.Errorf("append bucket log: %w", err)
	}
	return "", nil
}
