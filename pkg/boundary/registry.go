package boundary

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for model lifecycle events. A nil logger selects
// slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// Registry issues and resolves handles. It is safe for concurrent use.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	models     map[uuid.UUID]*session
	released   map[uuid.UUID]struct{}
	lastSerial uint16

	bufMu   sync.Mutex
	buffers map[BufferHandle][]byte
	nextBuf BufferHandle
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:   slog.Default(),
		models:   make(map[uuid.UUID]*session),
		released: make(map[uuid.UUID]struct{}),
		buffers:  make(map[BufferHandle][]byte),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open registers a built keeper and returns a caller-owned handle to it.
func (r *Registry) Open(k *types.RecordKeeper) (ModelHandle, error) {
	if k == nil {
		return ModelHandle{}, errors.New("open: nil keeper")
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	r.mu.Lock()
	serial, err := r.nextSerial()
	if err != nil {
		r.mu.Unlock()
		return ModelHandle{}, err
	}
	r.models[id] = newSession(id, serial, k)
	r.mu.Unlock()

	r.logger.Debug("model opened", "model", id,
		"classes", k.Classes().Len(), "defs", k.Defs().Len())
	return ModelHandle{id: id}, nil
}

// Release closes the model. Every borrowed handle, View, cursor and
// sequence derived from it becomes invalid. Releasing twice returns
// ErrReleased.
func (r *Registry) Release(m ModelHandle) error {
	r.mu.Lock()
	s, ok := r.models[m.id]
	if ok {
		delete(r.models, m.id)
		r.released[m.id] = struct{}{}
	}
	r.mu.Unlock()

	if !ok {
		return r.missingModel(m)
	}
	s.closed.Store(true)
	r.logger.Debug("model released", "model", m.id)
	return nil
}

// nextSerial returns a session serial not used by any open model. It must
// be called with mu held.
func (r *Registry) nextSerial() (uint16, error) {
	for range serialMask {
		r.lastSerial++
		if r.lastSerial == 0 {
			r.lastSerial++
		}
		if !r.serialInUse(r.lastSerial) {
			return r.lastSerial, nil
		}
	}
	return 0, errors.New("open: too many open models")
}

func (r *Registry) serialInUse(serial uint16) bool {
	for _, s := range r.models {
		if s.serial == serial {
			return true
		}
	}
	return false
}

func (r *Registry) session(m ModelHandle) (*session, error) {
	r.mu.RLock()
	s, ok := r.models[m.id]
	r.mu.RUnlock()
	if !ok {
		return nil, r.missingModel(m)
	}
	return s, nil
}

func (r *Registry) missingModel(m ModelHandle) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.released[m.id]; ok {
		return fmt.Errorf("model %s: %w", m, ErrReleased)
	}
	return fmt.Errorf("model %s: %w", m, ErrInvalidHandle)
}

// Keeper returns the keeper behind m for callers on the Go side of the
// boundary.
func (r *Registry) Keeper(m ModelHandle) (*types.RecordKeeper, error) {
	s, err := r.session(m)
	if err != nil {
		return nil, err
	}
	return s.keeper, nil
}
