package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"projecthub/backend/config"
	"projecthub/backend/logging"
	"projecthub/backend/models"
	"projecthub/backend/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestCreateProjectValidation(t *testing.T) {
	// Required-field checks run before any store access.
	service := &ProjectService{}
	ctx := context.Background()

	if _, err := service.CreateProject(ctx, models.Project{ManagerID: primitive.NewObjectID()}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("missing name = %v, want ErrValidation", err)
	}
	if _, err := service.CreateProject(ctx, models.Project{Name: "apollo"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("missing manager = %v, want ErrValidation", err)
	}
}

// Exercises the full delete cascade: removing a project
// takes its attachments (objects and metadata) and memberships with it and
// detaches its tasks.
func TestDeleteProjectCascades(t *testing.T) {
	database := setupTestDB(t)
	endpoint := os.Getenv("STORAGE_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("STORAGE_TEST_ENDPOINT not set, skipping integration test")
	}

	attachmentStorage, err := storage.NewAttachmentStorage(config.StorageConfig{
		Endpoint:  endpoint,
		AccessKey: envOr("STORAGE_TEST_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("STORAGE_TEST_SECRET_KEY", "minioadmin"),
		Bucket:    "projecthub-test",
	}, database.Collection("attachments"), logging.Logger)
	if err != nil {
		t.Fatalf("failed to initialize storage: %v", err)
	}

	projectService := NewProjectService(
		database.Collection("projects"),
		database.Collection("memberships"),
		database.Collection("tasks"),
		attachmentStorage,
	)
	membershipService := NewMembershipService(
		database.Collection("memberships"),
		database.Collection("projects"),
		database.Collection("users"),
		&fakeNotifier{},
	)
	taskService := NewTaskService(
		database.Collection("tasks"),
		database.Collection("projects"),
		database.Collection("users"),
		&fakeNotifier{},
	)
	ctx := context.Background()

	managerID := seedUser(t, database, "manager")
	memberID := seedUser(t, database, "alice")
	projectID := seedProject(t, database, "apollo", managerID)

	if _, err := membershipService.AddMember(ctx, projectID, memberID, models.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	content := []byte("attached")
	if _, err := attachmentStorage.Upload(ctx, projectID, "doc.txt", "text/plain", int64(len(content)), bytes.NewReader(content)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	task, err := taskService.CreateTask(ctx, models.Task{
		ProjectID:  &projectID,
		AssigneeID: memberID,
		Name:       "standalone after cascade",
		Deadline:   time.Now().Add(time.Hour),
		Status:     models.StatusTodo,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := projectService.DeleteProject(ctx, projectID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	assertEmpty := func(collection string, filter bson.M) {
		t.Helper()
		count, err := database.Collection(collection).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("CountDocuments(%s): %v", collection, err)
		}
		if count != 0 {
			t.Errorf("%s still holds %d rows for the deleted project", collection, count)
		}
	}
	assertEmpty("memberships", bson.M{"projectId": projectID})
	assertEmpty("attachments", bson.M{"projectId": projectID})
	assertEmpty("projects", bson.M{"_id": projectID})

	// The task survives without its project link.
	var detached models.Task
	if err := database.Collection("tasks").FindOne(ctx, bson.M{"_id": task.ID}).Decode(&detached); err != nil {
		t.Fatalf("task should survive project deletion: %v", err)
	}
	if detached.ProjectID != nil {
		t.Error("task still references the deleted project")
	}

	if err := projectService.DeleteProject(ctx, projectID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second DeleteProject = %v, want ErrNotFound", err)
	}
}
