package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for the event channel.
const DefaultEventBufferSize = 100

// Errors returned by ChannelEventBus.
var (
	ErrBusClosed    = errors.New("event bus is closed")
	ErrBufferFull   = errors.New("event buffer full")
	ErrInvalidEvent = errors.New("event type must implement domain.Event")
)

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

var eventInterface = reflect.TypeOf((*domain.Event)(nil)).Elem()

// ChannelEventBus provides a channel-based event bus for async event handling.
// A single dispatcher delivers events in publish order; handlers for one event type
// run in registration order.
type ChannelEventBus struct {
	events   chan domain.Event
	handlers map[reflect.Type][]func(context.Context, domain.Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		events:   make(chan domain.Event, bufferSize),
		handlers: make(map[reflect.Type][]func(context.Context, domain.Event)),
		ctx:      ctx,
		cancel:   cancel,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

func (b *ChannelEventBus) dispatch() {
	defer b.wg.Done()

	// Ranging until the channel is closed drains events published before Close.
	for event := range b.events {
		b.mu.RLock()
		handlers := b.handlers[reflect.TypeOf(event)]
		b.mu.RUnlock()

		for _, handler := range handlers {
			b.invoke(handler, event)
		}
	}
}

func (b *ChannelEventBus) invoke(handler func(context.Context, domain.Event), event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"type", reflect.TypeOf(event).String(),
				"panic", r,
			)
		}
	}()

	handler(b.ctx, event)
}

// Publish enqueues an event for asynchronous delivery.
// Non-blocking: if the channel buffer is full, the event is dropped.
func (b *ChannelEventBus) Publish(event domain.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eventType := reflect.TypeOf(event).String()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", eventType)
		return ErrBusClosed
	}

	select {
	case b.events <- event:
		slog.Debug("published event", "type", eventType)
		return nil
	default:
		slog.Warn("event buffer full, dropping event", "type", eventType)
		return ErrBufferFull
	}
}

// Subscribe registers a handler for events of the given concrete type.
func (b *ChannelEventBus) Subscribe(
	eventType reflect.Type,
	handler func(context.Context, domain.Event),
) error {
	if eventType == nil || !eventType.Implements(eventInterface) {
		return ErrInvalidEvent
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Close stops accepting events, delivers the ones already queued and waits for the
// dispatcher to finish. Handlers must not call Close.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.events)
	b.mu.Unlock()

	b.wg.Wait()
	b.cancel()

	slog.Debug("channel event bus closed")
}
