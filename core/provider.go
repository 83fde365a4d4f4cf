package core

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ProviderState describes the lifecycle of a lazily established connection
type ProviderState int

const (
	// StateUnconfigured is permanent: no connection string was supplied.
	StateUnconfigured ProviderState = iota
	// StateIdle means no connection attempt has succeeded yet and none is running.
	StateIdle
	// StateConnecting means an attempt is in flight.
	StateConnecting
	// StateReady means a handle is memoized for the rest of the process lifetime.
	StateReady
)

func (s ProviderState) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// DialFunc establishes a connection handle
type DialFunc[T any] func(ctx context.Context) (T, error)

// Provider lazily establishes a single handle and shares it with every caller.
//
// The first caller triggers dial; callers arriving while the attempt is in
// flight wait for the same result. A successful handle is kept forever, a
// failed attempt is not remembered so the next call dials again.
type Provider[T any] struct {
	dial       DialFunc[T]
	group      singleflight.Group
	connecting atomic.Bool

	mu    sync.RWMutex
	ready bool
	value T
}

// NewProvider creates a provider. A nil dial yields a permanently unconfigured provider.
func NewProvider[T any](dial DialFunc[T]) *Provider[T] {
	return &Provider[T]{dial: dial}
}

func (p *Provider[T]) Configured() bool {
	return p.dial != nil
}

func (p *Provider[T]) State() ProviderState {
	if p.dial == nil {
		return StateUnconfigured
	}
	p.mu.RLock()
	ready := p.ready
	p.mu.RUnlock()
	if ready {
		return StateReady
	}
	if p.connecting.Load() {
		return StateConnecting
	}
	return StateIdle
}

func (p *Provider[T]) cached() (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value, p.ready
}

// Get returns the memoized handle, establishing it on first use.
// An unconfigured provider fails fast with ErrUnconfigured.
func (p *Provider[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if p.dial == nil {
		return zero, ErrUnconfigured
	}

	if v, ok := p.cached(); ok {
		return v, nil
	}

	// The attempt is shared, so it must not die with the caller that started it.
	dialCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan("dial", func() (any, error) {
		if v, ok := p.cached(); ok {
			return v, nil
		}

		p.connecting.Store(true)
		defer p.connecting.Store(false)

		v, err := p.dial(dialCtx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.value = v
		p.ready = true
		p.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Close releases the memoized handle when it has a Close(ctx) method.
func (p *Provider[T]) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return nil
	}

	var zero T
	value := p.value
	p.value = zero
	p.ready = false

	if c, ok := any(value).(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}

// StorageProvider is the Provider used for the document store
type StorageProvider struct {
	*Provider[DocumentStorage]
}

var _ DocumentProvider = (*StorageProvider)(nil)

func NewStorageProvider(dial DialFunc[DocumentStorage]) *StorageProvider {
	return &StorageProvider{Provider: NewProvider(dial)}
}

func (p *StorageProvider) Storage(ctx context.Context) (DocumentStorage, error) {
	return p.Get(ctx)
}
