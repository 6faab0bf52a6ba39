package notify

import "context"

// Notifier publishes admin-facing notifications about survey activity.
// This abstraction allows swapping the mock with the email notifier
// without refactoring callers.
type Notifier interface {
	Publish(ctx context.Context, subject, message string) error
}
