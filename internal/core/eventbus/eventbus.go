// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within taskly.
package eventbus

import (
	"context"
	"sync"
)

// Event identifies an event type on the bus.
type Event string

// All event types, sorted A-Z.
const (
	EventAlarmFired     Event = "alarm.fired"
	EventLevelUp        Event = "level.up"
	EventSaveFailed     Event = "save.failed"
	EventStreakChanged  Event = "streak.changed"
	EventTaskCompleted  Event = "task.completed"
	EventTaskCreated    Event = "task.created"
	EventTaskDeleted    Event = "task.deleted"
	EventToastPublished Event = "toast.published"
)

// envelope pairs an event with its payload for the dispatch channel.
type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches typed events to subscribers on a single background
// goroutine. Publishing never blocks: events are dropped (and the OnDrop
// hooks fired) when the buffer is full.
type EventBus struct {
	ch    chan envelope
	done  chan struct{}
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates an event bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		done: make(chan struct{}),
		subs: map[Event][]func(any){},
	}
}

// Start runs the dispatch loop until ctx is canceled, then finishes whatever
// is still buffered before returning. Short-lived commands publish right
// before shutdown, so cancellation must not discard the queue.
func (bus *EventBus) Start(ctx context.Context) {
	defer close(bus.done)
	for {
		select {
		case <-ctx.Done():
			bus.drainQueue()
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

// drainQueue dispatches until the buffer is empty. Subscribers can publish
// while being drained (the toast router does), so the loop keeps going until
// the channel has nothing left.
func (bus *EventBus) drainQueue() {
	for {
		select {
		case env := <-bus.ch:
			bus.dispatch(env)
		default:
			return
		}
	}
}

// Wait blocks until the dispatch loop has exited and the queue is drained.
// Only meaningful once Start's context has been canceled.
func (bus *EventBus) Wait() {
	<-bus.done
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.invoke(env, fn)
	}
}

// invoke calls a subscriber, converting panics into OnPanic hook calls so a
// single bad subscriber cannot take down the dispatch loop.
func (bus *EventBus) invoke(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

// addSub registers a raw subscriber. Used by the typed Subscribe* methods.
func (bus *EventBus) addSub(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	bus.runOnSubscribe(event)
}
