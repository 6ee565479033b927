// Package events implements the in-process change notifier: named events
// delivered synchronously to subscribers in subscription order.
package events

import (
	"fmt"
	"sync"
	"time"

	"hrdesk/internal/observability"
	"hrdesk/pkg/domain"
)

// Name identifies a notification.
type Name string

// Events emitted by the data layer.
const (
	EmployeeAdded       Name = "employeeAdded"
	EmployeeUpdated     Name = "employeeUpdated"
	EmployeeDeleted     Name = "employeeDeleted"
	EmployeeWageUpdated Name = "employeeWageUpdated"
	AttendanceUpdated   Name = "attendanceUpdated"
	SettingsUpdated     Name = "settingsUpdated"
	PayrollCalculated   Name = "payrollCalculated"
	DataSync            Name = "dataSync"
	ConnectionChange    Name = "connectionChange"
)

// All lists every event name in a stable order.
func All() []Name {
	return []Name{
		EmployeeAdded, EmployeeUpdated, EmployeeDeleted, EmployeeWageUpdated,
		AttendanceUpdated, SettingsUpdated, PayrollCalculated, DataSync, ConnectionChange,
	}
}

// Event is what handlers receive. Before/After hold the entity states for
// mutations; Action carries the attendance add/update distinction and the
// originating action of a dataSync.
type Event struct {
	Name   Name
	Action string
	Entity domain.EntityType
	ID     string
	Before domain.ChangePayload
	After  domain.ChangePayload
	// Data holds an event specific value (e.g. the wage update result).
	Data any
	At   time.Time
}

// Handler receives events.
type Handler func(Event)

// Subscription identifies a registered handler for Off.
type Subscription struct {
	name Name
	id   uint64
}

type subscriber struct {
	id uint64
	fn Handler
}

// Notifier is a synchronous publish/subscribe registry.
type Notifier struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Name][]subscriber
	logger observability.Logger
}

// NewNotifier returns an empty notifier. A nil logger discards handler
// failures.
func NewNotifier(logger observability.Logger) *Notifier {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	return &Notifier{subs: make(map[Name][]subscriber), logger: logger}
}

// On registers fn for name and returns its subscription.
func (n *Notifier) On(name Name, fn Handler) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	n.subs[name] = append(n.subs[name], subscriber{id: n.nextID, fn: fn})
	return Subscription{name: name, id: n.nextID}
}

// Off removes a subscription. Unknown subscriptions are ignored.
func (n *Notifier) Off(sub Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.subs[sub.name]
	for i, s := range list {
		if s.id == sub.id {
			n.subs[sub.name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to every handler subscribed to ev.Name, in subscription
// order. A panicking handler is logged and does not stop the others.
func (n *Notifier) Emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	n.mu.RLock()
	handlers := make([]subscriber, len(n.subs[ev.Name]))
	copy(handlers, n.subs[ev.Name])
	n.mu.RUnlock()
	for _, s := range handlers {
		n.call(s, ev)
	}
}

func (n *Notifier) call(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("event handler failed", "event", string(ev.Name), "error", fmt.Sprint(r))
		}
	}()
	s.fn(ev)
}

// Count returns the number of handlers subscribed to name.
func (n *Notifier) Count(name Name) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[name])
}
