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

// MembershipService manages the (user, project) join records. The unique
// index on (projectId, userId) is the real guard for the one-membership
// invariant; the service only translates its violation into Conflict.
type MembershipService struct {
	MembershipsCollection *mongo.Collection
	ProjectsCollection    *mongo.Collection
	UsersCollection       *mongo.Collection
	Notifications         Notifier
}

func NewMembershipService(memberships, projects, users *mongo.Collection, notifications Notifier) *MembershipService {
	return &MembershipService{
		MembershipsCollection: memberships,
		ProjectsCollection:    projects,
		UsersCollection:       users,
		Notifications:         notifications,
	}
}

// AddMember inserts a membership after checking both ends of the pair
// exist. A duplicate pair surfaces as Conflict regardless of how many
// callers race; exactly one insert wins.
func (s *MembershipService) AddMember(ctx context.Context, projectID, userID primitive.ObjectID, role models.ProjectRole) (*models.Membership, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown project role %q", models.ErrValidation, role)
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: project %s", models.ErrNotFound, projectID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}

	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": userID, "isActive": true}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	membership := &models.Membership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}

	if _, err := s.MembershipsCollection.InsertOne(ctx, membership); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: user %s is already a member of project %s", models.ErrConflict, userID.Hex(), projectID.Hex())
		}
		return nil, fmt.Errorf("failed to add member: %v", err)
	}

	if err := s.Notifications.Notify(userID.Hex(), "Added to project",
		fmt.Sprintf("You have been added to project %q as %s.", project.Name, role)); err != nil {
		// The membership row is already committed; a lost notification is
		// not worth failing the request over.
		logNotificationFailure("member added", err)
	}

	return membership, nil
}

// RemoveMember is idempotent: removing a pair that does not exist is a
// successful no-op.
func (s *MembershipService) RemoveMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	_, err := s.MembershipsCollection.DeleteOne(ctx, bson.M{"projectId": projectID, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to remove member: %v", err)
	}
	return nil
}

// ChangeRole overwrites the role on an existing membership.
func (s *MembershipService) ChangeRole(ctx context.Context, projectID, userID primitive.ObjectID, role models.ProjectRole) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown project role %q", models.ErrValidation, role)
	}

	result, err := s.MembershipsCollection.UpdateOne(ctx,
		bson.M{"projectId": projectID, "userId": userID},
		bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return fmt.Errorf("failed to change role: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: no membership for user %s in project %s", models.ErrNotFound, userID.Hex(), projectID.Hex())
	}
	return nil
}

// ListMembers resolves each membership to the user's display fields.
func (s *MembershipService) ListMembers(ctx context.Context, projectID primitive.ObjectID) ([]models.MemberInfo, error) {
	cursor, err := s.MembershipsCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %v", err)
	}
	defer cursor.Close(ctx)

	members := []models.MemberInfo{}
	for cursor.Next(ctx) {
		var m models.Membership
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode membership: %v", err)
		}

		var user models.User
		if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": m.UserID}).Decode(&user); err != nil {
			if err == mongo.ErrNoDocuments {
				// Deactivated users keep their membership removed, so a
				// missing user here is a decode-time anomaly worth skipping.
				continue
			}
			return nil, fmt.Errorf("failed to fetch member user: %v", err)
		}

		members = append(members, models.MemberInfo{
			UserID: m.UserID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   m.Role,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return members, nil
}
