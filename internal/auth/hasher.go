package auth

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = 10

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a salted one-way hash of plaintext.
	Hash(ctx context.Context, plaintext string) (string, error)

	// Verify reports whether plaintext matches hash. A malformed hash is a
	// mismatch, not an error; errors are only returned when the call could not
	// run at all (e.g. the context ended while waiting for a slot).
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// HashObserver receives the duration of each hash or verify call.
type HashObserver interface {
	ObserveHash(operation string, d time.Duration)
}

// BcryptHasher implements PasswordHasher with bcrypt. Concurrent calls are
// bounded so hashing bursts cannot starve other request goroutines of CPU.
type BcryptHasher struct {
	cost     int
	slots    *semaphore.Weighted
	observer HashObserver
}

// NewBcryptHasher creates a hasher with the given cost. A concurrency of zero
// or less means GOMAXPROCS.
func NewBcryptHasher(cost, concurrency int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &BcryptHasher{cost: cost, slots: semaphore.NewWeighted(int64(concurrency))}, nil
}

// WithObserver attaches a latency observer and returns the hasher.
func (h *BcryptHasher) WithObserver(o HashObserver) *BcryptHasher {
	h.observer = o
	return h
}

// Cost returns the configured bcrypt cost.
func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	defer h.slots.Release(1)

	start := time.Now()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	h.observe("hash", start)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	defer h.slots.Release(1)

	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	h.observe("verify", start)
	return err == nil, nil
}

func (h *BcryptHasher) observe(op string, start time.Time) {
	if h.observer != nil {
		h.observer.ObserveHash(op, time.Since(start))
	}
}
