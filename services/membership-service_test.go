package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"projecthub/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMembershipFixture(t *testing.T) (*MembershipService, *fakeNotifier, primitive.ObjectID, primitive.ObjectID) {
	database := setupTestDB(t)
	notifier := &fakeNotifier{}
	service := NewMembershipService(
		database.Collection("memberships"),
		database.Collection("projects"),
		database.Collection("users"),
		notifier,
	)
	managerID := seedUser(t, database, "manager")
	userID := seedUser(t, database, "alice")
	projectID := seedProject(t, database, "apollo", managerID)
	return service, notifier, projectID, userID
}

func TestAddMemberLifecycle(t *testing.T) {
	service, notifier, projectID, userID := newMembershipFixture(t)
	ctx := context.Background()

	membership, err := service.AddMember(ctx, projectID, userID, models.RoleLeader)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if membership.Role != models.RoleLeader {
		t.Errorf("role = %q, want leader", membership.Role)
	}
	if notifier.count() != 1 {
		t.Errorf("expected one notification after AddMember, got %d", notifier.count())
	}

	// Same pair again, even with a different role, must conflict.
	if _, err := service.AddMember(ctx, projectID, userID, models.RoleMember); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("second AddMember = %v, want ErrConflict", err)
	}

	// Removal is idempotent.
	if err := service.RemoveMember(ctx, projectID, userID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if err := service.RemoveMember(ctx, projectID, userID); err != nil {
		t.Fatalf("RemoveMember (absent pair): %v", err)
	}

	// After removal the pair is free again.
	if _, err := service.AddMember(ctx, projectID, userID, models.RoleMember); err != nil {
		t.Fatalf("AddMember after removal: %v", err)
	}
}

func TestAddMemberConcurrentSameName(t *testing.T) {
	service, _, projectID, userID := newMembershipFixture(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.AddMember(ctx, projectID, userID, models.RoleMember)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, models.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != writers-1 {
		t.Errorf("got %d successes and %d conflicts, want exactly 1 and %d", successes, conflicts, writers-1)
	}
}

func TestAddMemberMissingEndpoints(t *testing.T) {
	service, _, projectID, userID := newMembershipFixture(t)
	ctx := context.Background()

	if _, err := service.AddMember(ctx, primitive.NewObjectID(), userID, models.RoleMember); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("absent project: got %v, want ErrNotFound", err)
	}
	if _, err := service.AddMember(ctx, projectID, primitive.NewObjectID(), models.RoleMember); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("absent user: got %v, want ErrNotFound", err)
	}
	if _, err := service.AddMember(ctx, projectID, userID, "superuser"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("unknown role: got %v, want ErrValidation", err)
	}
}

func TestChangeRole(t *testing.T) {
	service, _, projectID, userID := newMembershipFixture(t)
	ctx := context.Background()

	if err := service.ChangeRole(ctx, projectID, userID, models.RoleLeader); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("ChangeRole on absent membership = %v, want ErrNotFound", err)
	}

	if _, err := service.AddMember(ctx, projectID, userID, models.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := service.ChangeRole(ctx, projectID, userID, models.RoleLeader); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}

	members, err := service.ListMembers(ctx, projectID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].Role != models.RoleLeader {
		t.Errorf("members = %+v, want one leader", members)
	}
}
