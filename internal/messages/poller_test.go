package messages

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	apperrors "taskflow-gateway/pkg/errors"
)

const (
	convA = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	convB = "8d0f7780-8536-41ef-a55c-f18fd2fa1bf8"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	msgs  map[string][]entities.Message
	fail  int32
}

func (f *fakeFetcher) Messages(_ context.Context, id string) ([]entities.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[id]++
	if atomic.LoadInt32(&f.fail) == 1 {
		return nil, errors.New("backend down")
	}
	return append([]entities.Message{}, f.msgs[id]...), nil
}

func (f *fakeFetcher) Calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *fakeFetcher) Set(id string, msgs ...entities.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.msgs == nil {
		f.msgs = map[string][]entities.Message{}
	}
	f.msgs[id] = msgs
}

type delivery struct {
	conversation string
	count        int
}

func TestPoller_DeliversOnlyChanges(t *testing.T) {
	f := &fakeFetcher{}
	f.Set(convA, entities.Message{ID: "m1"})
	got := make(chan delivery, 10)
	p := NewPoller(f, 10*time.Millisecond, func(id string, msgs []entities.Message) {
		got <- delivery{id, len(msgs)}
	}, zap.NewNop())
	defer p.Stop()

	require.NoError(t, p.Select(convA))
	assert.Equal(t, delivery{convA, 1}, <-got)

	require.Eventually(t, func() bool { return f.Calls(convA) >= 3 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, got, "unchanged lists are not re-delivered")

	f.Set(convA, entities.Message{ID: "m1"}, entities.Message{ID: "m2"})
	assert.Equal(t, delivery{convA, 2}, <-got)
}

func TestPoller_SelectSwitchesConversation(t *testing.T) {
	f := &fakeFetcher{}
	p := NewPoller(f, 10*time.Millisecond, func(string, []entities.Message) {}, zap.NewNop())
	defer p.Stop()

	require.NoError(t, p.Select(convA))
	require.Eventually(t, func() bool { return f.Calls(convA) > 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Select(convB))
	stoppedAt := f.Calls(convA)

	require.Eventually(t, func() bool { return f.Calls(convB) >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, stoppedAt, f.Calls(convA), "the old loop is stopped")
	assert.Equal(t, convB, p.Active())
}

func TestPoller_ErrorsDoNotStopPolling(t *testing.T) {
	f := &fakeFetcher{fail: 1}
	p := NewPoller(f, 10*time.Millisecond, func(string, []entities.Message) {}, zap.NewNop())
	defer p.Stop()

	require.NoError(t, p.Select(convA))

	require.Eventually(t, func() bool { return f.Calls(convA) >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StopAndInvalidID(t *testing.T) {
	f := &fakeFetcher{}
	p := NewPoller(f, 10*time.Millisecond, func(string, []entities.Message) {}, zap.NewNop())

	assert.True(t, apperrors.IsInvalidInput(p.Select("general")))
	assert.Equal(t, "", p.Active())

	require.NoError(t, p.Select(convA))
	p.Stop()
	calls := f.Calls(convA)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, f.Calls(convA))
	assert.Equal(t, "", p.Active())
}
