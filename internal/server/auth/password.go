package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/server/metrics"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// maxPasswordBytes is the bcrypt input limit. Longer passwords are cut to
// this length on both hash and verify, so bytes past it never matter.
const maxPasswordBytes = 72

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// PasswordHasher hashes and verifies passwords with bcrypt. Every bcrypt call
// runs under a weighted semaphore, so at most `concurrency` hashes burn CPU at
// once and the remaining cores stay free for requests that do not hash.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted
	dummy []byte
}

// NewPasswordHasher validates cost and concurrency and precomputes the hash
// used to equalise timing for unknown accounts. Errors here are startup
// errors.
func NewPasswordHasher(cost int, concurrency int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range [%d, %d]", common.ErrInvalidConfig, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("%w: hash concurrency must be positive, got %d", common.ErrInvalidConfig, concurrency)
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("dummy hash seed: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(concurrency)),
		dummy: dummy,
	}, nil
}

// Hash returns a bcrypt hash embedding its own salt and cost. Any plaintext
// is accepted, the empty one included; the error is non-nil only when ctx
// ends before a hashing slot frees up.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	var out []byte
	err := h.withSlot(ctx, metrics.OperationHash, func() error {
		var err error
		out, err = bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
		return err
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches hash. Mismatches and malformed
// hashes are a plain false; the error is non-nil only when ctx ends before a
// hashing slot frees up.
func (h *PasswordHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	var ok bool
	err := h.withSlot(ctx, metrics.OperationVerify, func() error {
		ok = bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
		return nil
	})
	return ok, err
}

// VerifyAbsent spends the same work as Verify against a hash nobody knows the
// password for. Login calls it when the email is unknown.
func (h *PasswordHasher) VerifyAbsent(ctx context.Context, password string) error {
	return h.withSlot(ctx, metrics.OperationVerify, func() error {
		_ = bcrypt.CompareHashAndPassword(h.dummy, bcryptInput(password))
		return nil
	})
}

func (h *PasswordHasher) withSlot(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.slots.Release(1)
	defer func() { metrics.RecordPasswordHash(op, time.Since(start)) }()

	return fn()
}
