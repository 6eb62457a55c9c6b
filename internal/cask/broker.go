package cask

import (
	"context"
	"fmt"
	"sync"
)

// AssetQuery is the only interface reachable from the untrusted consumer.
// It exposes exactly two idempotent, side-effect-free queries and nothing
// else: no key material, no metadata, no decryption primitives. Consumer
// code must depend on this type, never on *Broker.
type AssetQuery interface {
	// AssetsPath returns the resolved bundle path. It blocks until the
	// broker settles; after a failed resolution it returns "" and the
	// resolution error.
	AssetsPath(ctx context.Context) (string, error)

	// DevMode reports whether the dev-mode branch was taken. Blocks and
	// fails like AssetsPath.
	DevMode(ctx context.Context) (bool, error)
}

// BrokerState tracks the broker's position in its lifecycle.
type BrokerState int

const (
	StateUninitialized BrokerState = iota
	StateResolving
	StateReady
	StateFailed
)

func (s BrokerState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolving:
		return "resolving"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("BrokerState(%d)", int(s))
	}
}

// Broker caches the single resolution outcome and answers consumer queries.
// Lifecycle: Uninitialized -> Resolving -> Ready | Failed, terminal in both
// Ready and Failed. The transition to Resolving happens once, at startup;
// Settle or Fail happens once, when the pipeline finishes. Queries issued
// before settlement block; queries after Fail get the resolution error,
// never stale or nil data.
type Broker struct {
	mu     sync.Mutex
	state  BrokerState
	bundle ResolvedBundle
	err    error
	done   chan struct{}
}

var _ AssetQuery = (*Broker)(nil)

// NewBroker creates a Broker in the Uninitialized state.
func NewBroker() *Broker {
	return &Broker{done: make(chan struct{})}
}

// Begin marks the broker Resolving. It may be called exactly once.
func (b *Broker) Begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateUninitialized {
		return fmt.Errorf("broker already %s", b.state)
	}
	b.state = StateResolving
	return nil
}

// Settle records a successful resolution and wakes all pending queries.
// The bundle is copied in; the broker owns its copy from here on.
func (b *Broker) Settle(bundle ResolvedBundle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateResolving {
		return fmt.Errorf("cannot settle broker in state %s", b.state)
	}
	b.state = StateReady
	b.bundle = bundle
	close(b.done)
	return nil
}

// Fail records a failed resolution and wakes all pending queries. The
// broker answers every subsequent query with err.
func (b *Broker) Fail(err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateResolving {
		return fmt.Errorf("cannot fail broker in state %s", b.state)
	}
	b.state = StateFailed
	b.err = err
	close(b.done)
	return nil
}

// State returns the broker's current lifecycle state.
func (b *Broker) State() BrokerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Bundle is the non-blocking accessor for the settled outcome. It returns
// ErrNotReady before settlement and the resolution error after a failure.
func (b *Broker) Bundle() (ResolvedBundle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateReady:
		return b.bundle, nil
	case StateFailed:
		return ResolvedBundle{}, b.err
	default:
		return ResolvedBundle{}, ErrNotReady
	}
}

// wait blocks until the broker settles or ctx is done.
func (b *Broker) wait(ctx context.Context) (ResolvedBundle, error) {
	select {
	case <-b.done:
		return b.Bundle()
	case <-ctx.Done():
		return ResolvedBundle{}, ctx.Err()
	}
}

// AssetsPath implements AssetQuery.
func (b *Broker) AssetsPath(ctx context.Context) (string, error) {
	bundle, err := b.wait(ctx)
	if err != nil {
		return "", err
	}
	return bundle.Path, nil
}

// DevMode implements AssetQuery.
func (b *Broker) DevMode(ctx context.Context) (bool, error) {
	bundle, err := b.wait(ctx)
	if err != nil {
		return false, err
	}
	return bundle.DevMode, nil
}
