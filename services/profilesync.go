package services

import (
	"context"
	"fmt"

	"github.com/lborres/reisetagebuch/core"
)

// ProfileSyncService mirrors profiles into the users collection keyed by user_id
type ProfileSyncService struct {
	remote
}

// Ensure ProfileSyncService implements ProfileSyncHandler
var _ core.ProfileSyncHandler = (*ProfileSyncService)(nil)

func NewProfileSyncService(cfg RemoteConfig) *ProfileSyncService {
	return &ProfileSyncService{remote{cfg.withDefaults()}}
}

func (s *ProfileSyncService) SyncProfile(ctx context.Context, profile core.ProfileSync) (string, error) {
	if !s.configured() {
		return SkippedUnconfigured, nil
	}

	if err := validateStruct(profile, ""); err != nil {
		return "", err
	}

	col, err := s.collection(ctx, core.CollectionUsers)
	if err != nil {
		return "", err
	}
	if err := col.Upsert(ctx, core.FieldUserID, profile.ID, profile.Document(), s.now()); err != nil {
		return "", fmt.Errorf("sync profile: %w", err)
	}
	return "", nil
}
