package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"projecthub/backend/db"
	"projecthub/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// setupTestDB connects to the Mongo instance named by MONGO_TEST_URI and
// hands back a throwaway database with the production indexes applied.
// Tests that need it skip themselves when the variable is unset.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := db.Connect(ctx, uri)
	if err != nil {
		t.Fatalf("failed to connect to test mongo: %v", err)
	}

	database := client.Database("projecthub_test_" + primitive.NewObjectID().Hex())
	if err := db.EnsureIndexes(ctx, database); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cleanupCancel()
		_ = database.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})
	return database
}

// fakeNotifier records emitted notifications for assertions.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(userID, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, title)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func seedUser(t *testing.T, database *mongo.Database, name string) primitive.ObjectID {
	t.Helper()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     name + "@example.com",
		Password:  "irrelevant",
		Role:      "member",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if _, err := database.Collection("users").InsertOne(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}

func seedProject(t *testing.T, database *mongo.Database, name string, managerID primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	project := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Status:    models.ProjectTodo,
		Priority:  models.PriorityMedium,
		ManagerID: managerID,
		CreatedAt: time.Now(),
	}
	if _, err := database.Collection("projects").InsertOne(context.Background(), project); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return project.ID
}
