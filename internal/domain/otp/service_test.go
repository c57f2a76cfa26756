package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (s *recordingSender) SendCode(_ context.Context, to, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.codes == nil {
		s.codes = map[string]string{}
	}
	s.codes[to] = code
	return nil
}

func (s *recordingSender) last(to string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[to]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *recordingSender, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	sender := &recordingSender{}
	all := append([]Option{WithClock(clock.Now)}, opts...)
	return NewService(NewMemoryStore(), sender, all...), sender, clock
}

func TestHOTPGeneratorLength(t *testing.T) {
	for _, digits := range []int{6, 8} {
		code, err := HOTPGenerator(digits)
		require.NoError(t, err)
		assert.Len(t, code, digits)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9', "non-digit in %q", code)
		}
	}
}

func TestIssueAndVerifyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, sender, _ := newTestService(t)

	_, err := svc.Issue(ctx, "asha@example.com")
	require.NoError(t, err)
	code := sender.last("asha@example.com")
	require.Len(t, code, DefaultLength)

	require.NoError(t, svc.Verify(ctx, "ASHA@example.com", code))
	assert.ErrorIs(t, svc.Verify(ctx, "asha@example.com", code), ErrNotFound)
}

func TestVerifyMismatchKeepsEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, WithGenerator(func(int) (string, error) { return "123456", nil }))

	_, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", "000000"), ErrInvalid)
	assert.NoError(t, svc.Verify(ctx, "a@example.com", "123456"))
}

func TestVerifyAfterExpiryReportsExpired(t *testing.T) {
	ctx := context.Background()
	svc, sender, clock := newTestService(t, WithTTL(time.Minute))

	_, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	code := sender.last("a@example.com")

	clock.Advance(time.Minute + time.Second)
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", code), ErrExpired)
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", code), ErrNotFound)
}

func TestVerifyUnknownIdentifier(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.ErrorIs(t, svc.Verify(context.Background(), "nobody@example.com", "123456"), ErrNotFound)
	assert.ErrorIs(t, svc.Verify(context.Background(), "", "123456"), ErrNotFound)
}

func TestIssueRespectsResendInterval(t *testing.T) {
	ctx := context.Background()
	codes := []string{"111111", "222222", "333333"}
	next := 0
	gen := func(int) (string, error) {
		code := codes[next]
		next++
		return code, nil
	}
	svc, _, clock := newTestService(t, WithGenerator(gen), WithResendInterval(30*time.Second))

	_, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	_, err = svc.Issue(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrTooSoon)

	clock.Advance(25 * time.Second)
	_, err = svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", "111111"), ErrInvalid)
	assert.NoError(t, svc.Verify(ctx, "a@example.com", "333333"))
}

func TestIssueDeliveryFailureDiscardsCode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewService(store, sender)

	_, err := svc.Issue(ctx, "a@example.com")
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestConcurrentVerifyHasOneWinner(t *testing.T) {
	ctx := context.Background()
	svc, sender, _ := newTestService(t)
	_, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	code := sender.last("a@example.com")

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Verify(ctx, "a@example.com", code)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 1, wins)
}
