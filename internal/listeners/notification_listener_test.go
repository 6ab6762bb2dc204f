package listeners

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/events"
	"taskflow-gateway/pkg/websocket"
)

type pushed struct {
	userID  string
	typ     string
	payload interface{}
}

type fakePusher struct {
	mu   sync.Mutex
	sent []pushed
}

func (p *fakePusher) SendToUser(userID, typ string, payload interface{}) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, pushed{userID, typ, payload})
	return 1, nil
}

func (p *fakePusher) Sent() []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushed{}, p.sent...)
}

func TestPushListener_NotificationGoesToRecipient(t *testing.T) {
	p := &fakePusher{}
	l := NewPushListener(p, time.Millisecond, zap.NewNop())
	n := entities.Notification{ID: "n1", UserID: "bob", Type: entities.NotificationTaskAssigned}

	require.NoError(t, l.handleNotificationCreated(context.Background(), events.NotificationCreatedEvent{Notification: n}))

	sent := p.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "bob", sent[0].userID)
	assert.Equal(t, websocket.TypeNotification, sent[0].typ)
	assert.Equal(t, n, sent[0].payload)
}

func TestPushListener_RefreshBurstIsCoalesced(t *testing.T) {
	p := &fakePusher{}
	l := NewPushListener(p, 20*time.Millisecond, zap.NewNop())
	defer l.Stop()
	ctx := context.Background()

	for gen := uint64(1); gen <= 3; gen++ {
		require.NoError(t, l.handleStoreRefreshed(ctx, events.StoreRefreshedEvent{UserID: "alice", Generation: gen}))
	}
	require.NoError(t, l.handleStoreRefreshed(ctx, events.StoreRefreshedEvent{UserID: "bob", Generation: 7}))

	require.Eventually(t, func() bool { return len(p.Sent()) == 2 }, time.Second, 5*time.Millisecond)
	byUser := map[string]websocket.RefreshPayload{}
	for _, s := range p.Sent() {
		assert.Equal(t, websocket.TypeRefresh, s.typ)
		byUser[s.userID] = s.payload.(websocket.RefreshPayload)
	}
	assert.Equal(t, uint64(3), byUser["alice"].Generation)
	assert.Equal(t, uint64(7), byUser["bob"].Generation)
}

func TestPushListener_MessagesPolled(t *testing.T) {
	p := &fakePusher{}
	l := NewPushListener(p, 0, zap.NewNop())
	msgs := []entities.Message{{ID: "m1", Content: "hi"}}

	require.NoError(t, l.handleMessagesPolled(context.Background(), events.MessagesPolledEvent{UserID: "alice", ConversationID: "c1", Messages: msgs}))

	sent := p.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, websocket.MessagesPayload{ConversationID: "c1", Messages: msgs}, sent[0].payload)
}
