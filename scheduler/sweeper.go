package scheduler

import (
	"context"
	"fmt"
	"time"

	"projecthub/backend/models"
	"projecthub/backend/services"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OverdueSweeper periodically materializes the derived overdue condition
// into the stored task status. Reads never depend on it (IsOverdue is
// computed at call time); the sweep exists so the became-overdue
// notification fires exactly once per task. The conditional update below
// is the once-guard: a task already marked overdue no longer matches.
type OverdueSweeper struct {
	TasksCollection *mongo.Collection
	Notifications   services.Notifier
	Interval        time.Duration
	logger          *logrus.Logger
	cancel          context.CancelFunc
}

func NewOverdueSweeper(tasks *mongo.Collection, notifications services.Notifier, interval time.Duration, logger *logrus.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		TasksCollection: tasks,
		Notifications:   notifications,
		Interval:        interval,
		logger:          logger,
	}
}

// Start runs the sweep loop until Stop is called.
func (s *OverdueSweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Sweep(ctx); err != nil {
					s.logger.Errorf("Overdue sweep failed: %v", err)
				}
			}
		}
	}()
	s.logger.Infof("Overdue sweeper started with interval %s", s.Interval)
}

func (s *OverdueSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("Overdue sweeper stopped")
}

// Sweep marks every non-completed task whose deadline has passed as
// overdue and notifies its assignee. Tasks are transitioned one by one
// with the full predicate in the filter, so a concurrent completion or an
// earlier sweep can never produce a duplicate notification.
func (s *OverdueSweeper) Sweep(ctx context.Context) error {
	now := time.Now()
	filter := bson.M{
		"deadline": bson.M{"$lt": now},
		"status":   bson.M{"$in": []models.TaskStatus{models.StatusTodo, models.StatusInProgress}},
	}

	cursor, err := s.TasksCollection.Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to find overdue candidates: %v", err)
	}
	defer cursor.Close(ctx)

	var candidates []models.Task
	if err := cursor.All(ctx, &candidates); err != nil {
		return fmt.Errorf("failed to decode overdue candidates: %v", err)
	}

	for _, task := range candidates {
		result, err := s.TasksCollection.UpdateOne(ctx,
			bson.M{
				"_id":      task.ID,
				"deadline": bson.M{"$lt": now},
				"status":   bson.M{"$in": []models.TaskStatus{models.StatusTodo, models.StatusInProgress}},
			},
			bson.M{"$set": bson.M{"status": models.StatusOverdue}})
		if err != nil {
			s.logger.Errorf("Failed to mark task %s overdue: %v", task.ID.Hex(), err)
			continue
		}
		if result.ModifiedCount == 0 {
			// Someone completed or already swept the task between the
			// find and the update.
			continue
		}

		if err := s.Notifications.Notify(task.AssigneeID.Hex(), "Task overdue",
			fmt.Sprintf("Task %q passed its deadline on %s.", task.Name, task.Deadline.Format(time.RFC3339))); err != nil {
			s.logger.Errorf("Failed to notify assignee of overdue task %s: %v", task.ID.Hex(), err)
		}
	}
	return nil
}
