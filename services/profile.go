package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lborres/reisetagebuch/core"
)

// ProfileStore keeps one profile per user in local storage
type ProfileStore struct {
	profiles *Collection[core.Profile]
}

func NewProfileStore(kv core.KVStorage, logger *slog.Logger) *ProfileStore {
	return &ProfileStore{profiles: NewCollection[core.Profile](kv, core.KeyProfiles, nil, logger)}
}

// ForUser returns the profile of userID, creating an empty one on first access.
func (s *ProfileStore) ForUser(userID int64) (core.Profile, error) {
	if profile, ok := s.profiles.Find(userID); ok {
		return profile, nil
	}

	profiles := s.profiles.Load()
	profile := core.Profile{UserID: userID, Bio: "", AvatarURL: nil}
	if err := s.profiles.Replace(append(profiles, profile)); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}

// Update merges the non-nil patch fields into the profile, creating it first
// when the user has none yet.
func (s *ProfileStore) Update(userID int64, patch core.ProfilePatch) (core.Profile, error) {
	if _, err := s.ForUser(userID); err != nil {
		return core.Profile{}, err
	}

	profile, err := s.profiles.Update(userID, func(p *core.Profile) {
		if patch.Bio != nil {
			p.Bio = *patch.Bio
		}
		switch {
		case patch.ClearAvatarURL:
			p.AvatarURL = nil
		case patch.AvatarURL != nil:
			avatar := *patch.AvatarURL
			p.AvatarURL = &avatar
		}
	})
	if errors.Is(err, core.ErrNotFound) {
		return core.Profile{}, fmt.Errorf("profile of user %d: %w", userID, core.ErrProfileNotFound)
	}
	return profile, err
}

func (s *ProfileStore) Subscribe(fn func([]core.Profile)) (unsubscribe func()) {
	return s.profiles.Subscribe(fn)
}
