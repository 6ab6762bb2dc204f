package listeners

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskflow-gateway/internal/events"
	"taskflow-gateway/pkg/eventbus"
	"taskflow-gateway/pkg/websocket"
)

const defaultRefreshDebounce = 300 * time.Millisecond

// Pusher delivers an envelope to a user's live connections.
type Pusher interface {
	SendToUser(userID, messageType string, payload interface{}) (int, error)
}

// refreshGroup coalesces the reloads of one user inside the debounce window.
type refreshGroup struct {
	latest events.StoreRefreshedEvent
	timer  *time.Timer
}

// PushListener forwards bus events to the browser over websocket.
type PushListener struct {
	pusher   Pusher
	debounce time.Duration
	logger   *zap.Logger

	groups   map[string]*refreshGroup
	groupsMu sync.Mutex
}

func NewPushListener(pusher Pusher, debounce time.Duration, logger *zap.Logger) *PushListener {
	if debounce <= 0 {
		debounce = defaultRefreshDebounce
	}
	return &PushListener{
		pusher:   pusher,
		debounce: debounce,
		logger:   logger.Named("push_listener"),
		groups:   make(map[string]*refreshGroup),
	}
}

func (l *PushListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.NotificationCreatedEvent{}.Name(), l.handleNotificationCreated)
	bus.Subscribe(events.StoreRefreshedEvent{}.Name(), l.handleStoreRefreshed)
	bus.Subscribe(events.MessagesPolledEvent{}.Name(), l.handleMessagesPolled)
	l.logger.Info("push listener subscribed")
}

func (l *PushListener) handleNotificationCreated(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.NotificationCreatedEvent)
	if !ok || e.Notification.UserID == "" {
		return nil
	}
	_, err := l.pusher.SendToUser(e.Notification.UserID, websocket.TypeNotification, e.Notification)
	return err
}

func (l *PushListener) handleMessagesPolled(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.MessagesPolledEvent)
	if !ok || e.UserID == "" {
		return nil
	}
	_, err := l.pusher.SendToUser(e.UserID, websocket.TypeMessages, websocket.MessagesPayload{
		ConversationID: e.ConversationID,
		Messages:       e.Messages,
	})
	return err
}

// handleStoreRefreshed groups reloads per user: a burst of mutations sends
// one refresh signal carrying the newest generation.
func (l *PushListener) handleStoreRefreshed(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.StoreRefreshedEvent)
	if !ok || e.UserID == "" {
		return nil
	}

	l.groupsMu.Lock()
	defer l.groupsMu.Unlock()

	group, exists := l.groups[e.UserID]
	if !exists {
		group = &refreshGroup{}
		l.groups[e.UserID] = group
		userID := e.UserID
		group.timer = time.AfterFunc(l.debounce, func() { l.flushRefresh(userID) })
	}
	if e.Generation >= group.latest.Generation {
		group.latest = e
	}
	return nil
}

func (l *PushListener) flushRefresh(userID string) {
	l.groupsMu.Lock()
	group, exists := l.groups[userID]
	if !exists {
		l.groupsMu.Unlock()
		return
	}
	delete(l.groups, userID)
	l.groupsMu.Unlock()

	_, err := l.pusher.SendToUser(userID, websocket.TypeRefresh, websocket.RefreshPayload{
		Generation: group.latest.Generation,
		Failed:     group.latest.Failed,
	})
	if err != nil {
		l.logger.Error("failed to push refresh", zap.String("user", userID), zap.Error(err))
	}
}

// Stop cancels pending refresh signals.
func (l *PushListener) Stop() {
	l.groupsMu.Lock()
	defer l.groupsMu.Unlock()
	for id, g := range l.groups {
		g.timer.Stop()
		delete(l.groups, id)
	}
}
