// Package notify collects user-facing notifications raised by tables.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/changelog/internal/core"
)

// DefaultCapacity is the number of notifications kept before the oldest are
// discarded.
const DefaultCapacity = 50

// Level is the severity of a notification.
type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

// Notification is one message shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Center is an in-memory notification ring shared by every table.
// It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

var _ core.Notifier = (*Center)(nil)

// NewCenter creates a Center holding at most capacity notifications.
func NewCenter(capacity int, logger *slog.Logger) *Center {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// SendError records an error notification.
func (c *Center) SendError(title, detail string) {
	c.add(LevelError, title, detail)
}

// SendInfo records an informational notification.
func (c *Center) SendInfo(title, detail string) {
	c.add(LevelInfo, title, detail)
}

func (c *Center) add(level Level, title, detail string) {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Title:     title,
		Detail:    detail,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = append(c.items[:0:0], c.items[over:]...)
	}
	c.mu.Unlock()

	c.logger.Info("notification",
		"id", n.ID,
		"level", string(level),
		"title", title,
		"detail", detail,
	)
}

// List returns the current notifications, newest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, len(c.items))
	for i, n := range c.items {
		out[len(c.items)-1-i] = n
	}
	return out
}

// Latest returns the newest notification.
func (c *Center) Latest() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return Notification{}, false
	}
	return c.items[len(c.items)-1], true
}

// Dismiss removes the notification with the given id.
// Returns false if it does not exist.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of notifications held.
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every notification.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
