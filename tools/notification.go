package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification is one entry handed to the OS notification center.
type Notification struct {
	ID    string
	Title string
	Body  string
	At    time.Time
}

// NotificationScheduler is the OS notification facility seen as an opaque
// service.
type NotificationScheduler interface {
	Authorized(ctx context.Context) error
	Schedule(ctx context.Context, n Notification) error
}

// ScheduleNotificationArgs is the argument shape advertised to the provider.
type ScheduleNotificationArgs struct {
	Title string `json:"title" jsonschema:"description=Notification title"`
	Time  string `json:"time" jsonschema:"description=Delivery date and time as an RFC 3339 timestamp"`
	Body  string `json:"body,omitempty" jsonschema:"description=Optional notification body text"`
}

// NotificationTool schedules a local notification via the configured scheduler.
type NotificationTool struct {
	scheduler NotificationScheduler
	now       Clock
}

func NewNotificationTool(s NotificationScheduler, now Clock) *NotificationTool {
	if now == nil {
		now = time.Now
	}
	return &NotificationTool{scheduler: s, now: now}
}

func (t *NotificationTool) Name() string { return "schedule_notification" }

func (t *NotificationTool) Description() string {
	return "Schedule a local notification to be shown to the user at a specific date and time."
}

func (t *NotificationTool) Parameters() any { return &ScheduleNotificationArgs{} }

func (t *NotificationTool) Execute(ctx context.Context, args any) (string, error) {
	a, ok := args.(*ScheduleNotificationArgs)
	if !ok {
		return "", fmt.Errorf("schedule_notification: unexpected args type %T", args)
	}
	if a.Title == "" {
		return failPrefix + "Notification needs a title.", nil
	}
	at, ok := parseDueDate(a.Time, t.now())
	if !ok {
		return fmt.Sprintf("%sCouldn't understand the notification time %q.", failPrefix, a.Time), nil
	}
	if err := t.scheduler.Authorized(ctx); err != nil {
		return failPrefix + "Notifications permission denied. Enable access in system settings.", nil
	}
	n := Notification{
		ID:    uuid.NewString(),
		Title: a.Title,
		Body:  a.Body,
		At:    at,
	}
	if err := t.scheduler.Schedule(ctx, n); err != nil {
		return fmt.Sprintf("%sFailed to schedule notification: %v", failPrefix, err), nil
	}
	return fmt.Sprintf("%sScheduled notification: %q for %s", okPrefix, a.Title, at.Format(confirmTimeLayout)), nil
}
