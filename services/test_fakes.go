package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lborres/reisetagebuch/core"
)

// FakeKV is a test-only fake implementing core.KVStorage.
// It exposes error fields for behavior injection.
type FakeKV struct {
	mu        sync.RWMutex
	items     map[string][]byte
	getErr    error
	setErr    error
	removeErr error
}

func NewFakeKV() *FakeKV {
	return &FakeKV{items: make(map[string][]byte)}
}

func (f *FakeKV) GetItem(key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *FakeKV) SetItem(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.items[key] = append([]byte(nil), value...)
	return nil
}

func (f *FakeKV) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.items, key)
	return nil
}

// Raw returns the stored bytes of key.
func (f *FakeKV) Raw(key string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return string(f.items[key])
}

// FakeDocumentStore is a test-only fake implementing core.DocumentStorage.
// Upserts follow set / set-on-insert semantics: supplied fields overwrite,
// created_at is only written when the document is new.
type FakeDocumentStore struct {
	mu          sync.Mutex
	collections map[string][]core.RawDocument
	calls       int
	nextID      int
	failWith    error
}

var _ core.DocumentStorage = (*FakeDocumentStore)(nil)

func NewFakeDocumentStore() *FakeDocumentStore {
	return &FakeDocumentStore{collections: make(map[string][]core.RawDocument)}
}

// Provider returns a ready provider handing out this store.
func (f *FakeDocumentStore) Provider() *core.StorageProvider {
	return core.NewStorageProvider(func(ctx context.Context) (core.DocumentStorage, error) {
		return f, nil
	})
}

// FailWith makes every following collection operation return err.
func (f *FakeDocumentStore) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

// Calls counts collection operations.
func (f *FakeDocumentStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Docs returns copies of the documents of a collection.
func (f *FakeDocumentStore) Docs(name string) []core.RawDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.RawDocument, 0, len(f.collections[name]))
	for _, d := range f.collections[name] {
		out = append(out, copyDoc(d))
	}
	return out
}

func (f *FakeDocumentStore) Collection(name string) (core.DocumentCollection, error) {
	if !slices.Contains(core.Collections, name) {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownCollection, name)
	}
	return &fakeCollection{store: f, name: name}, nil
}

type fakeCollection struct {
	store *FakeDocumentStore
	name  string
}

func (c *fakeCollection) begin() error {
	c.store.calls++
	return c.store.failWith
}

func (c *fakeCollection) FindByOwner(ctx context.Context, ownerID, sortKey string) ([]core.RawDocument, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(); err != nil {
		return nil, err
	}

	out := []core.RawDocument{}
	for _, d := range c.store.collections[c.name] {
		if d[core.FieldUserID] == ownerID {
			out = append(out, copyDoc(d))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessValue(out[i][sortKey], out[j][sortKey])
	})
	return out, nil
}

func (c *fakeCollection) FindOne(ctx context.Context, id, ownerID string) (core.RawDocument, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(); err != nil {
		return nil, err
	}

	for _, d := range c.store.collections[c.name] {
		if d[core.FieldID] == id && d[core.FieldUserID] == ownerID {
			return copyDoc(d), nil
		}
	}
	return nil, core.ErrNotFound
}

func (c *fakeCollection) Upsert(ctx context.Context, matchField, matchValue string, fields core.RawDocument, now time.Time) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(); err != nil {
		return err
	}

	docs := c.store.collections[c.name]
	for i, d := range docs {
		if d[matchField] == matchValue {
			for k, v := range fields {
				d[k] = v
			}
			d[core.FieldUpdatedAt] = now
			docs[i] = d
			return nil
		}
	}

	doc := copyDoc(fields)
	doc[matchField] = matchValue
	if _, ok := doc[core.FieldID]; !ok {
		c.store.nextID++
		doc[core.FieldID] = fmt.Sprintf("fake-%d", c.store.nextID)
	}
	doc[core.FieldCreatedAt] = now
	doc[core.FieldUpdatedAt] = now
	c.store.collections[c.name] = append(docs, doc)
	return nil
}

func (c *fakeCollection) Insert(ctx context.Context, doc core.RawDocument) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(); err != nil {
		return err
	}

	for _, d := range c.store.collections[c.name] {
		if id, ok := doc[core.FieldID]; ok && d[core.FieldID] == id {
			return errors.New("duplicate key")
		}
	}
	c.store.collections[c.name] = append(c.store.collections[c.name], copyDoc(doc))
	return nil
}

func copyDoc(d core.RawDocument) core.RawDocument {
	out := make(core.RawDocument, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// lessValue orders missing values first, then numbers, then strings.
func lessValue(a, b any) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	as, aStr := asString(a)
	bs, bStr := asString(b)

	switch {
	case a == nil || isNilPtr(a):
		return !(b == nil || isNilPtr(b))
	case b == nil || isNilPtr(b):
		return false
	case aNum && bNum:
		return af < bf
	case aStr && bStr:
		return as < bs
	default:
		return aNum && bStr
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case *float64:
		if n != nil {
			return *n, true
		}
	case int:
		return float64(n), true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s != nil {
			return *s, true
		}
	}
	return "", false
}

func isNilPtr(v any) bool {
	switch p := v.(type) {
	case *string:
		return p == nil
	case *float64:
		return p == nil
	}
	return false
}

// FakeImageStorage is a test-only fake implementing core.ImageStorage.
type FakeImageStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	BaseURL string
	Err     error
}

func NewFakeImageStorage() *FakeImageStorage {
	return &FakeImageStorage{Objects: make(map[string][]byte), BaseURL: "https://img.test"}
}

func (f *FakeImageStorage) PutImage(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Objects[key] = append([]byte(nil), data...)
	return f.BaseURL + "/" + key, nil
}

// FakeAuditHandler is a test-only fake implementing core.AuditHandler.
type FakeAuditHandler struct {
	mu      sync.Mutex
	Entries []core.BucketLog
	Err     error
}

func (f *FakeAuditHandler) AppendLog(ctx context.Context, entry core.BucketLog, meta core.RequestMeta) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	entry.IP, entry.UserAgent = meta.IP, meta.UserAgent
	f.Entries = append(f.Entries, entry)
	return "", nil
}
