package services

import (
	"log/slog"

	"github.com/lborres/reisetagebuch/core"
)

// DefaultBucketCategory is used when an item is added without a category
const DefaultBucketCategory = "Allgemein"

// BucketStore keeps bucket-list goals in local storage
type BucketStore struct {
	items *Collection[core.BucketItem]
}

func NewBucketStore(kv core.KVStorage, ids *IDClock, logger *slog.Logger) *BucketStore {
	return &BucketStore{items: NewCollection[core.BucketItem](kv, core.KeyBucketList, ids, logger)}
}

// Add creates a goal. Category defaults to DefaultBucketCategory, the target year to nil.
func (s *BucketStore) Add(input core.BucketInput) (core.BucketItem, error) {
	if err := validateStruct(input, ""); err != nil {
		return core.BucketItem{}, err
	}

	category := DefaultBucketCategory
	if input.Category != nil && *input.Category != "" {
		category = *input.Category
	}

	return s.items.Create(func(id int64) core.BucketItem {
		return core.BucketItem{
			ID:         id,
			UserID:     input.UserID,
			Title:      input.Title,
			Category:   category,
			TargetYear: input.TargetYear,
			Done:       false,
		}
	})
}

func (s *BucketStore) Items() []core.BucketItem {
	return s.items.Load()
}

// ItemsForUser returns the goals of one user.
func (s *BucketStore) ItemsForUser(userID int64) []core.BucketItem {
	return ListForOwner(s.items, userID)
}

// Update merges the non-nil patch fields into the item.
func (s *BucketStore) Update(id int64, patch core.BucketPatch) (core.BucketItem, error) {
	return s.items.Update(id, func(item *core.BucketItem) {
		if patch.Title != nil {
			item.Title = *patch.Title
		}
		if patch.Category != nil {
			item.Category = *patch.Category
		}
		switch {
		case patch.ClearTargetYear:
			item.TargetYear = nil
		case patch.TargetYear != nil:
			year := *patch.TargetYear
			item.TargetYear = &year
		}
		if patch.Done != nil {
			item.Done = *patch.Done
		}
	})
}

// ToggleDone flips the done flag of the item.
func (s *BucketStore) ToggleDone(id int64) (core.BucketItem, error) {
	return s.items.Update(id, func(item *core.BucketItem) {
		item.Done = !item.Done
	})
}

func (s *BucketStore) Remove(id int64) error {
	return s.items.Remove(id)
}

// ClearAll removes every goal.
func (s *BucketStore) ClearAll() error {
	return s.items.Replace([]core.BucketItem{})
}

func (s *BucketStore) Subscribe(fn func([]core.BucketItem)) (unsubscribe func()) {
	return s.items.Subscribe(fn)
}
