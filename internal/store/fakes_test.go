package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
)

var errBackendDown = errors.New("backend down")

// fakeBackend serves fixed collections and records every call.
type fakeBackend struct {
	calls int32

	mu            sync.Mutex
	services      []entities.Service
	tasks         []entities.Task
	projects      []entities.Project
	notifications []entities.Notification
	loans         []entities.EmployeeLoan
	urgencies     []entities.UrgencyMode
	users         []entities.User

	failProjects bool
	failRead     map[string]bool
	tasksHook    func(call int32) // runs inside Tasks before returning
	taskCalls    int32

	payloads []map[string]any
	readIDs  []string
}

func (f *fakeBackend) hit() { atomic.AddInt32(&f.calls, 1) }

func (f *fakeBackend) Calls() int32 { return atomic.LoadInt32(&f.calls) }

func (f *fakeBackend) record(p map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
}

func (f *fakeBackend) Services(context.Context) ([]entities.Service, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.Service{}, f.services...), nil
}

func (f *fakeBackend) Tasks(context.Context) ([]entities.Task, error) {
	f.hit()
	n := atomic.AddInt32(&f.taskCalls, 1)
	f.mu.Lock()
	out := append([]entities.Task{}, f.tasks...)
	hook := f.tasksHook
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return out, nil
}

func (f *fakeBackend) Projects(context.Context) ([]entities.Project, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProjects {
		return nil, errBackendDown
	}
	return append([]entities.Project{}, f.projects...), nil
}

func (f *fakeBackend) Notifications(context.Context) ([]entities.Notification, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.Notification{}, f.notifications...), nil
}

func (f *fakeBackend) EmployeeLoans(context.Context) ([]entities.EmployeeLoan, error) {
	f.hit()
	return f.loans, nil
}

func (f *fakeBackend) UrgencyModes(context.Context) ([]entities.UrgencyMode, error) {
	f.hit()
	return f.urgencies, nil
}

func (f *fakeBackend) Users(context.Context) ([]entities.User, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.User{}, f.users...), nil
}

func (f *fakeBackend) CreateTask(_ context.Context, p map[string]any) (entities.Task, error) {
	f.hit()
	f.record(p)
	return transformers.Task(transformers.Record(p)), nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, id string, p map[string]any) (entities.Task, error) {
	f.hit()
	f.record(p)
	return entities.Task{ID: id}, nil
}

func (f *fakeBackend) DeleteTask(context.Context, string) error { f.hit(); return nil }

func (f *fakeBackend) CreateProject(_ context.Context, p map[string]any) (entities.Project, error) {
	f.hit()
	f.record(p)
	return transformers.Project(transformers.Record(p)), nil
}

func (f *fakeBackend) UpdateProject(_ context.Context, id string, p map[string]any) (entities.Project, error) {
	f.hit()
	f.record(p)
	return entities.Project{ID: id}, nil
}

func (f *fakeBackend) DeleteProject(context.Context, string) error { f.hit(); return nil }

func (f *fakeBackend) CreateService(_ context.Context, p map[string]any) (entities.Service, error) {
	f.hit()
	f.record(p)
	return transformers.Service(transformers.Record(p)), nil
}

func (f *fakeBackend) UpdateService(_ context.Context, id string, p map[string]any) (entities.Service, error) {
	f.hit()
	f.record(p)
	return entities.Service{ID: id}, nil
}

func (f *fakeBackend) DeleteService(context.Context, string) error { f.hit(); return nil }

func (f *fakeBackend) Register(_ context.Context, u transformers.NewUser) (*entities.User, error) {
	f.hit()
	out := u.User
	return &out, nil
}

func (f *fakeBackend) UpdateUser(_ context.Context, id string, p map[string]any) (entities.User, error) {
	f.hit()
	f.record(p)
	u := transformers.User(transformers.Record(p))
	u.ID = id
	return u, nil
}

func (f *fakeBackend) CreateComment(_ context.Context, taskID string, p map[string]any) (entities.Comment, error) {
	f.hit()
	f.record(p)
	c := transformers.Comment(transformers.Record(p), nil)
	c.ID = "c-1"
	c.TaskID = taskID
	return c, nil
}

func (f *fakeBackend) UpdateComment(_ context.Context, _, commentID string, p map[string]any) (entities.Comment, error) {
	f.hit()
	f.record(p)
	return entities.Comment{ID: commentID}, nil
}

func (f *fakeBackend) DeleteComment(context.Context, string, string) error { f.hit(); return nil }

func (f *fakeBackend) UploadAttachment(_ context.Context, up backend.Upload) (entities.Attachment, error) {
	f.hit()
	return entities.Attachment{ID: "a-1", Name: up.Filename, Owner: up.Owner}, nil
}

func (f *fakeBackend) DeleteAttachment(context.Context, string) error { f.hit(); return nil }

func (f *fakeBackend) CreateNotification(_ context.Context, n entities.Notification) (entities.Notification, error) {
	f.hit()
	return n, nil
}

func (f *fakeBackend) MarkNotificationRead(_ context.Context, id string) (entities.Notification, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readIDs = append(f.readIDs, id)
	if f.failRead[id] {
		return entities.Notification{}, errBackendDown
	}
	return entities.Notification{ID: id, IsRead: true}, nil
}

func (f *fakeBackend) DeleteNotification(context.Context, string) error { f.hit(); return nil }

func (f *fakeBackend) CreateEmployeeLoan(_ context.Context, p map[string]any) (entities.EmployeeLoan, error) {
	f.hit()
	f.record(p)
	return entities.EmployeeLoan{ID: "l-1"}, nil
}

func (f *fakeBackend) UpdateEmployeeLoan(_ context.Context, id string, p map[string]any) (entities.EmployeeLoan, error) {
	f.hit()
	f.record(p)
	return entities.EmployeeLoan{ID: id}, nil
}

func (f *fakeBackend) ActivateUrgencyMode(_ context.Context, p map[string]any) (entities.UrgencyMode, error) {
	f.hit()
	f.record(p)
	return transformers.UrgencyMode(transformers.Record(p)), nil
}

func (f *fakeBackend) DeactivateUrgencyMode(_ context.Context, id string, at time.Time) (entities.UrgencyMode, error) {
	f.hit()
	return entities.UrgencyMode{ID: id, IsActive: false}, nil
}

type assignedCall struct {
	actor   string
	task    entities.Task
	userIDs []string
}

// fakeNotifier records what the store asked it to raise.
type fakeNotifier struct {
	mu        sync.Mutex
	assigned  []assignedCall
	mentioned [][]string
	deadlines []string
}

func (n *fakeNotifier) TaskAssigned(_ context.Context, actorID string, task entities.Task, userIDs []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, assignedCall{actor: actorID, task: task, userIDs: userIDs})
	return nil
}

func (n *fakeNotifier) CommentMention(_ context.Context, _ entities.Comment, _ entities.Task, usernames []string, _ []entities.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mentioned = append(n.mentioned, usernames)
	return nil
}

func (n *fakeNotifier) DeadlineApproaching(_ context.Context, task entities.Task, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deadlines = append(n.deadlines, task.ID)
	return nil
}

func (n *fakeNotifier) Deadlines() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.deadlines...)
}

// memoryDeduper is a set of claimed keys.
type memoryDeduper struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (d *memoryDeduper) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys == nil {
		d.keys = map[string]bool{}
	}
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}
