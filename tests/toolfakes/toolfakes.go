// Package toolfakes provides in-memory stand-ins for the OS reminder and
// notification facilities, for tests that exercise the tool flow without a
// desktop session.
package toolfakes

import (
	"context"
	"sync"

	"github.com/kerinova/llmstream/tools"
)

// MemoryReminders is an in-memory tools.ReminderStore.
type MemoryReminders struct {
	mu      sync.Mutex
	Entries []tools.Reminder
}

func (m *MemoryReminders) Authorized(ctx context.Context) error { return nil }

func (m *MemoryReminders) Create(ctx context.Context, r tools.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, r)
	return nil
}

// MemoryNotifications is an in-memory tools.NotificationScheduler.
type MemoryNotifications struct {
	mu      sync.Mutex
	Entries []tools.Notification
}

func (m *MemoryNotifications) Authorized(ctx context.Context) error { return nil }

func (m *MemoryNotifications) Schedule(ctx context.Context, n tools.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, n)
	return nil
}
