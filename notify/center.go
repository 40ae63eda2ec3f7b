package notify

import (
	"sync"
	"time"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/google/uuid"
)

const DefaultCapacity = 50

type Notification struct {
	ID          string                   `json:"id"`
	Level       models.NotificationLevel `json:"level"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	CreatedAt   time.Time                `json:"createdAt"`
}

// Publisher is what the registers need from the notification centre.
type Publisher interface {
	Publish(level models.NotificationLevel, title string, description string) Notification
}

// Center holds the dismissible notifications of one session, oldest first.
type Center struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

func NewCenter() *Center {
	return &Center{capacity: DefaultCapacity, now: time.Now}
}

func (c *Center) Publish(level models.NotificationLevel, title string, description string) Notification {
	n := Notification{
		ID:          uuid.NewString(),
		Level:       level,
		Title:       title,
		Description: description,
		CreatedAt:   c.now(),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = append([]Notification(nil), c.items[over:]...)
	}
	return n
}

func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

// Dismiss removes a notification and reports whether it was present.
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

func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Discard drops every notification; used when a caller does not surface them.
type Discard struct{}

func (Discard) Publish(level models.NotificationLevel, title string, description string) Notification {
	return Notification{Level: level, Title: title, Description: description}
}
