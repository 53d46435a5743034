package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"projecthub/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddCommentValidation(t *testing.T) {
	// The empty-text check runs before any store access.
	service := &CommentService{}
	if _, err := service.AddComment(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), ""); !errors.Is(err, models.ErrValidation) {
		t.Errorf("AddComment with empty text = %v, want ErrValidation", err)
	}
}

func TestCommentThread(t *testing.T) {
	database := setupTestDB(t)
	notifier := &fakeNotifier{}
	service := NewCommentService(
		database.Collection("comments"),
		database.Collection("tasks"),
		database.Collection("users"),
		database.Collection("projects"),
		notifier,
	)
	ctx := context.Background()

	managerID := seedUser(t, database, "manager")
	assigneeID := seedUser(t, database, "bob")
	projectID := seedProject(t, database, "apollo", managerID)

	task := models.Task{
		ID:         primitive.NewObjectID(),
		ProjectID:  &projectID,
		AssigneeID: assigneeID,
		Name:       "write report",
		Deadline:   time.Now().Add(time.Hour),
		Status:     models.StatusTodo,
		Priority:   models.PriorityMedium,
		CreatedAt:  time.Now(),
	}
	if _, err := database.Collection("tasks").InsertOne(ctx, task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	if _, err := service.AddComment(ctx, primitive.NewObjectID(), assigneeID, "hi"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("AddComment on absent task = %v, want ErrNotFound", err)
	}

	first, err := service.AddComment(ctx, task.ID, managerID, "first")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if first.AuthorName != "manager" {
		t.Errorf("AuthorName = %q, want manager display name", first.AuthorName)
	}
	if first.CreatedAt.IsZero() {
		t.Error("CreatedAt must be server-assigned")
	}
	// Manager commented on a task assigned to bob: bob gets notified.
	if notifier.count() != 1 {
		t.Errorf("expected one notification, got %d", notifier.count())
	}

	if _, err := service.AddComment(ctx, task.ID, assigneeID, "second"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	// Assignee commented: only the manager is notified.
	if notifier.count() != 2 {
		t.Errorf("expected two notifications, got %d", notifier.count())
	}

	comments, err := service.ListComments(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].Text != "first" || comments[1].Text != "second" {
		t.Errorf("comments out of order: %q then %q", comments[0].Text, comments[1].Text)
	}
	if !comments[0].CreatedAt.Before(comments[1].CreatedAt) && !comments[0].CreatedAt.Equal(comments[1].CreatedAt) {
		t.Error("comments must be sorted by creation time ascending")
	}

	// Restartable: a second listing walks the same thread from the start.
	again, err := service.ListComments(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListComments (restart): %v", err)
	}
	if len(again) != 2 || again[0].ID != comments[0].ID {
		t.Error("re-listing should restart from the first comment")
	}
}
