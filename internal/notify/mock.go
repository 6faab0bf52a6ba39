package notify

import (
	"context"
	"log"
)

// MockNotifier implements Notifier by logging to stdout. Used when no
// email provider is configured.
type MockNotifier struct{}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Publish(ctx context.Context, subject, message string) error {
	log.Printf("📨 [MockNotifier] %s: %s", subject, message)
	return nil
}
