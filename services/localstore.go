package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lborres/reisetagebuch/core"
)

// Record is anything kept in a local collection
type Record interface {
	RecordID() int64
}

// IDClock hands out millisecond timestamps as record ids.
// Ids strictly increase even when two records are created within one millisecond.
type IDClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDClock() *IDClock {
	return &IDClock{now: time.Now}
}

// Next returns an id greater than floor and every id issued before.
func (c *IDClock) Next(floor int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	c.last = id
	return id
}

// Collection is one JSON array of records stored under a single key.
//
// Every mutation reads the whole array, applies the change, writes it back
// and then republishes it to subscribers. A nil KVStorage turns persistence
// into a no-op. Concurrent writers can lose updates: nothing locks between
// the read and the write.
type Collection[T Record] struct {
	kv     core.KVStorage
	key    string
	ids    *IDClock
	state  *core.Writable[[]T]
	logger *slog.Logger
}

func NewCollection[T Record](kv core.KVStorage, key string, ids *IDClock, logger *slog.Logger) *Collection[T] {
	if ids == nil {
		ids = NewIDClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collection[T]{kv: kv, key: key, ids: ids, logger: logger}
	c.state = core.NewWritable(c.Load())
	return c
}

// Load returns the stored records. Missing or unreadable data is an empty collection.
func (c *Collection[T]) Load() []T {
	records := []T{}
	if c.kv == nil {
		return records
	}

	raw, ok, err := c.kv.GetItem(c.key)
	if err != nil {
		c.logger.Warn("local store read failed", slog.String("key", c.key), slog.String("error", err.Error()))
		return records
	}
	if !ok {
		return records
	}

	if err := json.Unmarshal(raw, &records); err != nil {
		c.logger.Debug("local store data unreadable, treating as empty", slog.String("key", c.key))
		return []T{}
	}
	if records == nil {
		records = []T{}
	}
	return records
}

// Save overwrites the stored records.
func (c *Collection[T]) Save(records []T) error {
	if c.kv == nil {
		return nil
	}
	if records == nil {
		records = []T{}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.kv.SetItem(c.key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", c.key, err)
	}
	return nil
}

// Subscribe registers fn for every published state, starting with the current one.
func (c *Collection[T]) Subscribe(fn func([]T)) (unsubscribe func()) {
	return c.state.Subscribe(fn)
}

// State returns the last published records.
func (c *Collection[T]) State() []T {
	return c.state.Get()
}

func (c *Collection[T]) persist(records []T) error {
	if err := c.Save(records); err != nil {
		return err
	}
	c.state.Set(records)
	return nil
}

// Create builds a record with a fresh id, appends and persists it.
func (c *Collection[T]) Create(build func(id int64) T) (T, error) {
	records := c.Load()

	var floor int64
	for _, r := range records {
		if r.RecordID() > floor {
			floor = r.RecordID()
		}
	}

	record := build(c.ids.Next(floor))
	records = append(records, record)
	if err := c.persist(records); err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

// Find returns the record with id, or false.
func (c *Collection[T]) Find(id int64) (T, bool) {
	for _, r := range c.Load() {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Update applies fn to the record with id and persists the collection.
// A missing id fails with core.ErrNotFound.
func (c *Collection[T]) Update(id int64, fn func(*T)) (T, error) {
	records := c.Load()
	for i := range records {
		if records[i].RecordID() != id {
			continue
		}
		fn(&records[i])
		if err := c.persist(records); err != nil {
			var zero T
			return zero, err
		}
		return records[i], nil
	}

	var zero T
	return zero, fmt.Errorf("%s %d: %w", c.key, id, core.ErrNotFound)
}

// Remove drops the record with id. A missing id still persists the unchanged collection.
func (c *Collection[T]) Remove(id int64) error {
	records := c.Load()
	kept := records[:0]
	for _, r := range records {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	return c.persist(kept)
}

// Filter returns the records matching keep.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	out := []T{}
	for _, r := range c.Load() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Replace overwrites the whole collection.
func (c *Collection[T]) Replace(records []T) error {
	return c.persist(records)
}

// Owned is a record scoped to a user
type Owned interface {
	Record
	OwnerID() int64
}

// ListForOwner returns the records of c owned by ownerID.
func ListForOwner[T Owned](c *Collection[T], ownerID int64) []T {
	return c.Filter(func(r T) bool { return r.OwnerID() == ownerID })
}
