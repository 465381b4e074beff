package relay

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"

	"dmrelay/internal/model"
)

var testLog = logs.GetLoggerFromLevel(slog.LevelDebug)

// fakeSession records every event pushed to it.
type fakeSession struct {
	id       string
	full     bool
	mu       sync.Mutex
	events   []model.OutboundEvent
	identity int64
	loggedIn bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{id: uuid.NewString()}
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Push(event model.OutboundEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.events = append(f.events, event)
	return true
}

func (f *fakeSession) Identity() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity, f.loggedIn
}

func (f *fakeSession) SetIdentity(identity int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity = identity
	f.loggedIn = true
}

func (f *fakeSession) Events() []model.OutboundEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.OutboundEvent(nil), f.events...)
}

// fakeBroadcaster records broadcasts in order.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []model.OutboundEvent
}

func (f *fakeBroadcaster) Broadcast(event model.OutboundEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeBroadcaster) Events() []model.OutboundEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.OutboundEvent(nil), f.events...)
}

func (f *fakeBroadcaster) Last() model.OutboundEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}
