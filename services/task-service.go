package services

import (
	"context"
	"fmt"
	"time"

	"projecthub/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TaskService owns task creation and updates. Overdue is derived on read
// (IsOverdue); the periodic sweep in the scheduler package additionally
// materializes it into the stored status so the became-overdue notification
// fires exactly once.
type TaskService struct {
	TasksCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
	UsersCollection    *mongo.Collection
	Notifications      Notifier
}

func NewTaskService(tasks, projects, users *mongo.Collection, notifications Notifier) *TaskService {
	return &TaskService{
		TasksCollection:    tasks,
		ProjectsCollection: projects,
		UsersCollection:    users,
		Notifications:      notifications,
	}
}

// CreateTask validates the required fields, verifies the assignee (and the
// project when one is given) and notifies the assignee.
func (s *TaskService) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	if task.Name == "" {
		return nil, fmt.Errorf("%w: task name is required", models.ErrValidation)
	}
	if task.AssigneeID.IsZero() {
		return nil, fmt.Errorf("%w: assignee is required", models.ErrValidation)
	}
	if task.Deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline is required", models.ErrValidation)
	}
	if task.Status == "" {
		return nil, fmt.Errorf("%w: status is required", models.ErrValidation)
	}
	if !task.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status %q", models.ErrValidation, task.Status)
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !task.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, task.Priority)
	}

	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": task.AssigneeID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: assignee %s", models.ErrNotFound, task.AssigneeID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch assignee: %v", err)
	}
	if task.ProjectID != nil {
		if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": *task.ProjectID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, fmt.Errorf("%w: project %s", models.ErrNotFound, task.ProjectID.Hex())
			}
			return nil, fmt.Errorf("failed to fetch project: %v", err)
		}
	}

	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	if err := s.Notifications.Notify(task.AssigneeID.Hex(), "Task assigned",
		fmt.Sprintf("You have been assigned task %q.", task.Name)); err != nil {
		logNotificationFailure("task assigned", err)
	}

	return &task, nil
}

// UpdateTask applies the non-nil fields of the patch. A changed assignee is
// notified; any other status transition is free-form.
func (s *TaskService) UpdateTask(ctx context.Context, taskID primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	var current models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, taskID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	set := bson.M{}
	var newAssignee *primitive.ObjectID

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("%w: task name cannot be empty", models.ErrValidation)
		}
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Deadline != nil {
		if patch.Deadline.IsZero() {
			return nil, fmt.Errorf("%w: deadline cannot be empty", models.ErrValidation)
		}
		set["deadline"] = *patch.Deadline
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown task status %q", models.ErrValidation, *patch.Status)
		}
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, *patch.Priority)
		}
		set["priority"] = *patch.Priority
	}
	if patch.AssigneeID != nil {
		assigneeID, err := primitive.ObjectIDFromHex(*patch.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid assignee id", models.ErrValidation)
		}
		if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": assigneeID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, fmt.Errorf("%w: assignee %s", models.ErrNotFound, assigneeID.Hex())
			}
			return nil, fmt.Errorf("failed to fetch assignee: %v", err)
		}
		set["assigneeId"] = assigneeID
		if assigneeID != current.AssigneeID {
			newAssignee = &assigneeID
		}
	}
	if patch.ProjectID != nil {
		projectID, err := primitive.ObjectIDFromHex(*patch.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid project id", models.ErrValidation)
		}
		if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, fmt.Errorf("%w: project %s", models.ErrNotFound, projectID.Hex())
			}
			return nil, fmt.Errorf("failed to fetch project: %v", err)
		}
		set["projectId"] = projectID
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	result, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, taskID.Hex())
	}

	var updated models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to fetch updated task: %v", err)
	}

	if newAssignee != nil {
		if err := s.Notifications.Notify(newAssignee.Hex(), "Task assigned",
			fmt.Sprintf("You have been assigned task %q.", updated.Name)); err != nil {
			logNotificationFailure("task reassigned", err)
		}
	}

	return &updated, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, taskID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}
	return &task, nil
}

// IsOverdue computes the overdue condition at call time without mutating
// the stored status.
func (s *TaskService) IsOverdue(ctx context.Context, taskID primitive.ObjectID) (bool, error) {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return false, err
	}
	return task.IsOverdueAt(time.Now()), nil
}

func (s *TaskService) GetTasksByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}
