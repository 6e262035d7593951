package service

import (
	"sync"
)

type ChangeKind string

const (
	NotificationAdded    ChangeKind = "notification.added"
	NotificationRead     ChangeKind = "notification.read"
	NotificationsAllRead ChangeKind = "notification.all_read"
	NotificationDeleted  ChangeKind = "notification.deleted"
	ChatCreated          ChangeKind = "chat.created"
	ChatMessageSent      ChangeKind = "chat.message_sent"
	ChatRead             ChangeKind = "chat.read"
	ChatArchived         ChangeKind = "chat.archived"
	ChatUnarchived       ChangeKind = "chat.unarchived"
	ChatDeleted          ChangeKind = "chat.deleted"
)

// Change describes one store mutation. ID is the notification or chat id;
// it is empty for bulk changes.
type Change struct {
	Kind   ChangeKind
	UserID string
	ID     string
}

type Listener func(Change)

// observers is the subscriber list shared by both stores. Listeners run on
// the mutating goroutine after the store lock has been released.
type observers struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

func (o *observers) subscribe(l Listener) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.listeners == nil {
		o.listeners = make(map[int]Listener)
	}
	id := o.nextID
	o.nextID++
	o.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.listeners, id)
			o.mu.Unlock()
		})
	}
}

func (o *observers) publish(c Change) {
	o.mu.Lock()
	listeners := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		listeners = append(listeners, l)
	}
	o.mu.Unlock()

	for _, l := range listeners {
		l(c)
	}
}
