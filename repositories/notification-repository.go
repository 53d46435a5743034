package repositories

import (
	"fmt"
	"time"

	"projecthub/backend/models"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

type NotificationRepo struct {
	session *gocql.Session
	logger  *logrus.Logger
}

// NewNotificationRepo connects to Cassandra, creating the keyspace and
// table on first run.
func NewNotificationRepo(host string, logger *logrus.Logger) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra: %v", err)
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS projecthub
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyspace: %v", err)
	}

	cluster.Keyspace = "projecthub"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to projecthub keyspace: %v", err)
	}

	repo := &NotificationRepo{session: session, logger: logger}
	if err := repo.createTable(); err != nil {
		session.Close()
		return nil, err
	}

	logger.Info("Connected to Cassandra projecthub keyspace")
	return repo, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
}

// Partitioned by user, clustered newest-first so the read-pull listing is a
// single partition scan.
func (nr *NotificationRepo) createTable() error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			user_id TEXT,
			title TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %v", err)
	}
	return nil
}

func (nr *NotificationRepo) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, user_id, title, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.Title,
		notification.Message, notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		nr.logger.Errorf("Failed to insert notification for user %s: %v", notification.UserID, err)
		return fmt.Errorf("%w: insert notification: %v", models.ErrStorage, err)
	}
	return nil
}

func (nr *NotificationRepo) GetNotificationsByUserID(userID string) ([]models.Notification, error) {
	iter := nr.session.Query(
		`SELECT id, user_id, title, message, created_at, is_read
		 FROM notifications WHERE user_id = ?`, userID).Iter()

	var notifications []models.Notification
	var n models.Notification
	for iter.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.CreatedAt, &n.IsRead) {
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		nr.logger.Errorf("Failed to fetch notifications for user %s: %v", userID, err)
		return nil, fmt.Errorf("%w: fetch notifications: %v", models.ErrStorage, err)
	}
	return notifications, nil
}

// MarkNotificationAsRead flips the read flag. The flag only ever moves from
// unread to read; there is no way back.
func (nr *NotificationRepo) MarkNotificationAsRead(userID, notificationID string, createdAt time.Time) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return fmt.Errorf("%w: invalid notification id", models.ErrValidation)
	}

	// IF EXISTS keeps the update from upserting a phantom row when the id
	// does not match anything.
	applied, err := nr.session.Query(
		`UPDATE notifications SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ? IF EXISTS`,
		userID, createdAt, uuid).MapScanCAS(map[string]interface{}{})
	if err != nil {
		nr.logger.Errorf("Failed to mark notification %s as read: %v", notificationID, err)
		return fmt.Errorf("%w: mark notification read: %v", models.ErrStorage, err)
	}
	if !applied {
		return fmt.Errorf("%w: notification %s", models.ErrNotFound, notificationID)
	}
	return nil
}
