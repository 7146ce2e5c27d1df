// Package storage keeps conversation threads for the lifetime of a session.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"compsbot/config"
	"compsbot/model"
)

// ErrInvalidThreadID is returned for blank thread ids.
var ErrInvalidThreadID = errors.New("invalid thread id")

// Checkpointer stores the ordered message history of each thread. Appends
// are the only mutation; history is never rewritten.
type Checkpointer interface {
	Load(ctx context.Context, threadID string) ([]model.Message, error)
	Append(ctx context.Context, threadID string, msgs ...model.Message) error
	Close() error
}

// NewThreadID returns a fresh random thread id.
func NewThreadID() string {
	return uuid.NewString()
}

func validateThreadID(threadID string) error {
	if strings.TrimSpace(threadID) == "" {
		return ErrInvalidThreadID
	}
	return nil
}

// New opens the checkpointer selected by cfg.Backend ("memory" or "sqlite").
func New(cfg config.SessionConfig) (Checkpointer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemoryCheckpointer(), nil
	case "sqlite":
		cp, err := NewSQLiteCheckpointer(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		return cp, nil
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Backend)
	}
}

// MemoryCheckpointer holds threads in a map for the process lifetime.
type MemoryCheckpointer struct {
	mu      sync.RWMutex
	threads map[string][]model.Message
}

func NewMemoryCheckpointer() *MemoryCheckpointer {
	return &MemoryCheckpointer{threads: make(map[string][]model.Message)}
}

// Load returns a copy of the thread; an unknown thread is empty.
func (m *MemoryCheckpointer) Load(ctx context.Context, threadID string) ([]model.Message, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.CloneMessages(m.threads[threadID]), nil
}

func (m *MemoryCheckpointer) Append(ctx context.Context, threadID string, msgs ...model.Message) error {
	if err := validateThreadID(threadID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[threadID] = append(m.threads[threadID], model.CloneMessages(msgs)...)
	return nil
}

func (m *MemoryCheckpointer) Close() error {
	return nil
}
