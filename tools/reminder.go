package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reminder is one entry handed to the OS reminder facility.
type Reminder struct {
	ID    string
	Title string
	Notes string
	Due   time.Time
}

// ReminderStore is the OS reminder facility seen as an opaque service.
type ReminderStore interface {
	// Authorized reports whether the app may create reminders.
	Authorized(ctx context.Context) error
	Create(ctx context.Context, r Reminder) error
}

// CreateReminderArgs is the argument shape advertised to the provider.
type CreateReminderArgs struct {
	Title   string `json:"title" jsonschema:"description=Short title of the reminder"`
	DueDate string `json:"due_date" jsonschema:"description=Due date and time as an RFC 3339 timestamp"`
	Notes   string `json:"notes,omitempty" jsonschema:"description=Optional additional details"`
}

// ReminderTool creates a reminder via the configured store.
type ReminderTool struct {
	store ReminderStore
	now   Clock
}

func NewReminderTool(store ReminderStore, now Clock) *ReminderTool {
	if now == nil {
		now = time.Now
	}
	return &ReminderTool{store: store, now: now}
}

func (t *ReminderTool) Name() string { return "create_reminder" }

func (t *ReminderTool) Description() string {
	return "Create a reminder for the user at a specific date and time. " +
		"Resolve relative times (\"in 10 minutes\", \"tomorrow morning\") against the current date and time before calling."
}

func (t *ReminderTool) Parameters() any { return &CreateReminderArgs{} }

func (t *ReminderTool) Execute(ctx context.Context, args any) (string, error) {
	a, ok := args.(*CreateReminderArgs)
	if !ok {
		return "", fmt.Errorf("create_reminder: unexpected args type %T", args)
	}
	if a.Title == "" {
		return failPrefix + "Reminder needs a title.", nil
	}
	due, ok := parseDueDate(a.DueDate, t.now())
	if !ok {
		return fmt.Sprintf("%sCouldn't understand the reminder date %q.", failPrefix, a.DueDate), nil
	}
	if err := t.store.Authorized(ctx); err != nil {
		return failPrefix + "Reminders permission denied. Enable access in system settings.", nil
	}
	r := Reminder{
		ID:    uuid.NewString(),
		Title: a.Title,
		Notes: a.Notes,
		Due:   due,
	}
	if err := t.store.Create(ctx, r); err != nil {
		return fmt.Sprintf("%sFailed to save reminder: %v", failPrefix, err), nil
	}
	return fmt.Sprintf("%sCreated reminder: %q for %s", okPrefix, a.Title, due.Format(confirmTimeLayout)), nil
}
