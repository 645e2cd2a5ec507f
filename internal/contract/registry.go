package contract

import (
	"sync"

	dErrors "payshield/pkg/domain-errors"
)

// The registry holds one process-wide backend, built lazily by the factory
// main registers during wiring. Prefer explicit injection; the registry
// exists for callers that genuinely need the process-wide instance, and its
// reset hook keeps tests isolated.

var (
	regMu    sync.Mutex
	factory  func() (Backend, error)
	instance Backend
)

// SetFactory registers the constructor used to build the default backend on
// first request. Calling it clears any existing instance.
func SetFactory(f func() (Backend, error)) {
	regMu.Lock()
	defer regMu.Unlock()
	factory = f
	instance = nil
}

// Default returns the process-wide backend, constructing it on first call.
func Default() (Backend, error) {
	regMu.Lock()
	defer regMu.Unlock()
	if instance != nil {
		return instance, nil
	}
	if factory == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "no contract backend factory registered")
	}
	b, err := factory()
	if err != nil {
		return nil, err
	}
	instance = b
	return instance, nil
}

// SetDefault substitutes the process-wide backend. Passing nil clears it so
// the next Default call rebuilds from the factory. Intended for tests.
func SetDefault(b Backend) {
	regMu.Lock()
	defer regMu.Unlock()
	instance = b
}
