package services

import "projecthub/backend/logging"

// Notifier is the emission seam the lifecycle services fire events
// through. NotificationService is the production implementation.
type Notifier interface {
	Notify(userID, title, message string) error
}

// Notification writes ride on lifecycle events whose primary mutation has
// already committed, so their failures are logged and swallowed.
func logNotificationFailure(event string, err error) {
	logging.Logger.Errorf("Failed to emit notification for event %q: %v", event, err)
}
