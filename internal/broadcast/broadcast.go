// Package broadcast carries sync pings between data layer instances that
// share a durable namespace ("tabs").
package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Message announces that the writer identified by Origin changed the
// document stored under Key.
type Message struct {
	Key       string    `json:"key"`
	Origin    string    `json:"origin"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives messages. Handlers must not block for long; transports
// deliver on a single goroutine.
type Handler func(Message)

// Channel is a fan-out transport. Every subscriber sees every message,
// including ones it published itself.
type Channel interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe registers h until the returned cancel func is called.
	Subscribe(ctx context.Context, h Handler) (cancel func(), err error)
	Close() error
}

// Pinger is implemented by transports that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrClosed is returned by operations on a closed channel.
var ErrClosed = errors.New("broadcast: channel closed")

// Hub is an in-process Channel. Publish delivers synchronously, in
// subscription order, on the publisher's goroutine.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
	order  []int
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]Handler)}
}

// Publish implements Channel.
func (h *Hub) Publish(_ context.Context, msg Message) error {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]Handler, 0, len(h.order))
	for _, id := range h.order {
		handlers = append(handlers, h.subs[id])
	}
	h.mu.RUnlock()
	for _, fn := range handlers {
		fn(msg)
	}
	return nil
}

// Subscribe implements Channel.
func (h *Hub) Subscribe(_ context.Context, fn Handler) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	h.nextID++
	id := h.nextID
	h.subs[id] = fn
	h.order = append(h.order, id)
	var once sync.Once
	return func() { once.Do(func() { h.remove(id) }) }, nil
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
}

// Ping reports ErrClosed after Close.
func (h *Hub) Ping(context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}
	return nil
}

// Close drops all subscribers.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.subs = make(map[int]Handler)
	h.order = nil
	return nil
}
