package services

import (
	"context"
	"errors"
	"testing"

	"projecthub/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegisterUser(t *testing.T) {
	database := setupTestDB(t)
	service := NewUserService(database.Collection("users"), database.Collection("memberships"))
	ctx := context.Background()

	created, err := service.RegisterUser(ctx, models.User{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "Sup3rSecret",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if created.Password == "Sup3rSecret" {
		t.Error("credential stored unhashed")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if !created.IsActive {
		t.Error("new user should be active")
	}

	// Same email again, any casing: the unique index decides.
	if _, err := service.RegisterUser(ctx, models.User{
		Name:     "Imposter",
		Email:    "alice@example.com",
		Password: "An0therSecret",
	}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate email = %v, want ErrConflict", err)
	}

	if _, err := service.RegisterUser(ctx, models.User{
		Name:     "Weak",
		Email:    "weak@example.com",
		Password: "short",
	}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("weak password = %v, want ErrValidation", err)
	}
}

func TestDeactivateUserRemovesMemberships(t *testing.T) {
	database := setupTestDB(t)
	userService := NewUserService(database.Collection("users"), database.Collection("memberships"))
	membershipService := NewMembershipService(
		database.Collection("memberships"),
		database.Collection("projects"),
		database.Collection("users"),
		&fakeNotifier{},
	)
	ctx := context.Background()

	managerID := seedUser(t, database, "manager")
	userID := seedUser(t, database, "alice")
	projectA := seedProject(t, database, "apollo", managerID)
	projectB := seedProject(t, database, "borealis", managerID)

	for _, p := range []primitive.ObjectID{projectA, projectB} {
		if _, err := membershipService.AddMember(ctx, p, userID, models.RoleMember); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}

	if err := userService.DeactivateUser(ctx, userID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}

	var user models.User
	if err := database.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		t.Fatalf("user row must survive deactivation: %v", err)
	}
	if user.IsActive {
		t.Error("user should be inactive")
	}

	count, err := database.Collection("memberships").CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if count != 0 {
		t.Errorf("deactivation left %d memberships behind", count)
	}
}
