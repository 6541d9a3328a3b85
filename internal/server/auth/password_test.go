package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T, concurrency int) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost, concurrency)
	require.NoError(t, err)
	return h
}

func TestNewPasswordHasher_InvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		cost        int
		concurrency int
	}{
		{"cost too low", bcrypt.MinCost - 1, 1},
		{"cost too high", bcrypt.MaxCost + 1, 1},
		{"zero concurrency", bcrypt.MinCost, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPasswordHasher(tt.cost, tt.concurrency)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	h := newTestHasher(t, 2)
	ctx := context.Background()

	for _, p := range []string{"alice", "pässwörd", "with spaces and symbols !@#", strings.Repeat("x", 72)} {
		hash, err := h.Hash(ctx, p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)

		ok, err := h.Verify(ctx, p, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q must verify", p)
	}
}

func TestHash_SaltedAndEmbedsCost(t *testing.T) {
	h := newTestHasher(t, 1)
	ctx := context.Background()

	a, err := h.Hash(ctx, "alice")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	cost, err := bcrypt.Cost([]byte(a))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	for _, hash := range []string{a, b} {
		ok, err := h.Verify(ctx, "alice", hash)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = h.Verify(ctx, "alicE", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestHashVerify_AnyPlaintext(t *testing.T) {
	h := newTestHasher(t, 1)
	ctx := context.Background()

	for _, pw := range []string{"", " ", strings.Repeat("x", 72), strings.Repeat("x", 73), strings.Repeat("é", 100)} {
		hash, err := h.Hash(ctx, pw)
		require.NoError(t, err, "len=%d", len(pw))

		ok, err := h.Verify(ctx, pw, hash)
		require.NoError(t, err)
		assert.True(t, ok, "len=%d", len(pw))
	}
}

func TestHash_EmptyPasswordDoesNotMatchOthers(t *testing.T) {
	h := newTestHasher(t, 1)

	hash, err := h.Hash(context.Background(), "")
	require.NoError(t, err)

	ok, err := h.Verify(context.Background(), "x", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_TruncatesAt72Bytes(t *testing.T) {
	h := newTestHasher(t, 1)
	ctx := context.Background()
	base := strings.Repeat("a", 72)

	hash, err := h.Hash(ctx, base+"tail-one")
	require.NoError(t, err)

	ok, err := h.Verify(ctx, base+"tail-two", hash)
	require.NoError(t, err)
	assert.True(t, ok, "bytes past 72 are ignored")

	ok, err = h.Verify(ctx, strings.Repeat("a", 71), hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedHashIsFalse(t *testing.T) {
	h := newTestHasher(t, 1)

	for _, hash := range []string{"", "plaintext", "$2a$", "$2a$10$short"} {
		ok, err := h.Verify(context.Background(), "alice", hash)
		require.NoError(t, err)
		assert.False(t, ok, "hash %q", hash)
	}
}

func TestVerifyAbsent(t *testing.T) {
	h := newTestHasher(t, 1)
	assert.NoError(t, h.VerifyAbsent(context.Background(), "anything"))
}

func TestVerify_ContextCancelledWhileWaitingForSlot(t *testing.T) {
	h := newTestHasher(t, 1)

	// Occupy the only slot.
	require.NoError(t, h.slots.Acquire(context.Background(), 1))
	defer h.slots.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Verify(ctx, "alice", "$2a$04$invalid")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = h.Hash(ctx, "alice")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
