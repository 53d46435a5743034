package services

import (
	"fmt"
	"time"

	"projecthub/backend/models"
	"projecthub/backend/repositories"
)

// NotificationService produces notification rows on lifecycle events.
// Delivery is read-pull; nothing here pushes. It also does not deduplicate:
// callers fire it at most once per logical event.
type NotificationService struct {
	repo *repositories.NotificationRepo
}

func NewNotificationService(repo *repositories.NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

func (ns *NotificationService) Notify(userID, title, message string) error {
	if userID == "" || title == "" || message == "" {
		return fmt.Errorf("%w: userID, title, and message are required", models.ErrValidation)
	}
	return ns.repo.CreateNotification(&models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
		IsRead:    false,
	})
}

func (ns *NotificationService) GetNotificationsByUserID(userID string) ([]models.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userID is required", models.ErrValidation)
	}
	return ns.repo.GetNotificationsByUserID(userID)
}

func (ns *NotificationService) MarkNotificationAsRead(userID, notificationID string, createdAt time.Time) error {
	if userID == "" || notificationID == "" {
		return fmt.Errorf("%w: userID and notificationID are required", models.ErrValidation)
	}
	return ns.repo.MarkNotificationAsRead(userID, notificationID, createdAt)
}
