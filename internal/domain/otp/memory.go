package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// MemoryStore keeps codes in process. Expiry is checked on read; StartSweeper
// purges entries that are past expiry by more than the retention period.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
	retain  time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string]Entry{},
		now:     time.Now,
		retain:  ExpiredRetention,
		stop:    make(chan struct{}),
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, entry Entry, minInterval time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[key]
	replaced := false
	if ok && !existing.Expired(entry.IssuedAt) {
		if minInterval > 0 && entry.IssuedAt.Sub(existing.IssuedAt) < minInterval {
			return false, ErrTooSoon
		}
		replaced = true
	}
	m.entries[key] = entry
	return replaced, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, key, code string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return ErrNotFound
	}
	if entry.Expired(now) {
		delete(m.entries, key)
		return ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return ErrInvalid
	}
	delete(m.entries, key)
	return nil
}

// Len reports the number of entries currently held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, entry := range m.entries {
		if entry.Expired(now.Add(-m.retain)) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper purges long-expired entries every interval until ctx is done or Close is called.
// It may be started at most once.
func (m *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.done != nil {
		return
	}
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

// Close stops the sweeper and waits for it to exit.
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	if m.done != nil {
		<-m.done
	}
	return nil
}
