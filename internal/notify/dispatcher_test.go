package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/events"
	"taskflow-gateway/pkg/eventbus"
)

type spyCreator struct {
	mu     sync.Mutex
	calls  []entities.Notification
	failOn map[string]bool
}

func (s *spyCreator) CreateNotification(_ context.Context, n entities.Notification) (entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, n)
	if s.failOn[n.UserID] {
		return entities.Notification{}, errors.New("backend refused")
	}
	n.ID = "n-" + n.UserID
	return n, nil
}

type recordingBus struct {
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, e eventbus.Event) {
	b.events = append(b.events, e)
}

func TestDispatcher_BatchIsolation(t *testing.T) {
	creator := &spyCreator{failOn: map[string]bool{"u2": true}}
	bus := &recordingBus{}
	d := NewDispatcher(creator, bus, zap.NewNop())

	err := d.TaskAssigned(context.Background(), "actor", entities.Task{ID: "t1", Title: "Deploy"}, []string{"u1", "u2", "u3"})

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Len(t, creator.calls, 3, "every recipient is attempted")
	require.Len(t, bus.events, 2)
	created, ok := bus.events[0].(events.NotificationCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "u1", created.Notification.UserID)
	assert.Equal(t, "notification.created", created.Name())
}

func TestDispatcher_TaskAssignedSkipsActorAndEscalatesUrgent(t *testing.T) {
	creator := &spyCreator{}
	d := NewDispatcher(creator, nil, zap.NewNop())

	err := d.TaskAssigned(context.Background(), "me", entities.Task{ID: "t1", Title: "Fix", Priority: entities.PriorityUrgent}, []string{"me", "bob", "bob", ""})

	require.NoError(t, err)
	require.Len(t, creator.calls, 1)
	n := creator.calls[0]
	assert.Equal(t, "bob", n.UserID)
	assert.Equal(t, entities.NotificationTaskAssigned, n.Type)
	assert.Equal(t, entities.NotificationHigh, n.Priority)
	assert.Equal(t, "t1", n.RelatedID)
	assert.Contains(t, n.Message, `"Fix"`)
}

func TestDispatcher_TaskAssignedDefaultPriority(t *testing.T) {
	creator := &spyCreator{}
	d := NewDispatcher(creator, nil, zap.NewNop())

	require.NoError(t, d.TaskAssigned(context.Background(), "me", entities.Task{Priority: entities.PriorityHigh}, []string{"bob"}))

	assert.Equal(t, entities.NotificationMedium, creator.calls[0].Priority)
}

func TestDispatcher_CommentMention(t *testing.T) {
	creator := &spyCreator{}
	d := NewDispatcher(creator, nil, zap.NewNop())
	users := []entities.User{{ID: "u-alice", Username: "alice"}, {ID: "u-bob", Username: "bob"}}

	err := d.CommentMention(context.Background(),
		entities.Comment{AuthorID: "u-alice"},
		entities.Task{ID: "t1", Title: "Review"},
		[]string{"alice", "bob", "ghost"}, users)

	require.NoError(t, err)
	require.Len(t, creator.calls, 1)
	assert.Equal(t, "u-bob", creator.calls[0].UserID)
	assert.Equal(t, entities.NotificationCommentMention, creator.calls[0].Type)
	assert.Equal(t, entities.NotificationMedium, creator.calls[0].Priority)
}

func TestDispatcher_CommentMentionIgnoresCase(t *testing.T) {
	creator := &spyCreator{}
	d := NewDispatcher(creator, nil, zap.NewNop())
	users := []entities.User{
		{ID: "u-bob", Username: "bob", FirstName: "Robert", LastName: "Durand"},
		{ID: "u-carol", Username: "carol", FirstName: "Carole", LastName: "Martin"},
	}

	err := d.CommentMention(context.Background(),
		entities.Comment{AuthorID: "u-alice"},
		entities.Task{ID: "t1", Title: "Review"},
		[]string{"Bob", "martin"}, users)

	require.NoError(t, err)
	require.Len(t, creator.calls, 2)
	assert.Equal(t, "u-bob", creator.calls[0].UserID)
	assert.Equal(t, "u-carol", creator.calls[1].UserID, "falls back to the full name")
}

func TestDispatcher_DeadlineApproaching(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	creator := &spyCreator{}
	d := NewDispatcher(creator, nil, zap.NewNop())
	task := entities.Task{ID: "t1", Title: "Report", Deadline: now.Add(12 * time.Hour), AssignedTo: []string{"u1", "u2"}}

	require.NoError(t, d.DeadlineApproaching(context.Background(), task, now))

	require.Len(t, creator.calls, 2)
	assert.Equal(t, entities.NotificationDeadlineApproaching, creator.calls[0].Type)
	assert.Equal(t, entities.NotificationHigh, creator.calls[0].Priority)
	assert.Contains(t, creator.calls[0].Message, "12h")

	task.Deadline = now.Add(-time.Minute)
	require.NoError(t, d.DeadlineApproaching(context.Background(), task, now))
	assert.Len(t, creator.calls, 2, "past deadlines are not notified")
}
