package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"projecthub/backend/models"
	"projecthub/backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	UsersCollection       *mongo.Collection
	MembershipsCollection *mongo.Collection
}

func NewUserService(usersCollection, membershipsCollection *mongo.Collection) *UserService {
	return &UserService{
		UsersCollection:       usersCollection,
		MembershipsCollection: membershipsCollection,
	}
}

// RegisterUser validates and stores a new user with a hashed credential.
// Email uniqueness rides on the unique index, so a duplicate registration
// surfaces as Conflict even when two requests race.
func (s *UserService) RegisterUser(ctx context.Context, user models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Name == "" || user.Email == "" || user.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", models.ErrValidation)
	}
	if err := utils.ValidatePassword(user.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	user.Name = html.EscapeString(user.Name)
	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	user.ID = primitive.NewObjectID()
	user.IsActive = true
	user.CreatedAt = time.Now()
	if user.Role == "" {
		user.Role = "member"
	}

	if _, err := s.UsersCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: user with email %s already exists", models.ErrConflict, user.Email)
		}
		return nil, fmt.Errorf("failed to save user: %v", err)
	}
	return &user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.UsersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of the patch.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch models.ProfilePatch) (*models.User, error) {
	set := bson.M{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", models.ErrValidation)
		}
		set["name"] = html.EscapeString(*patch.Name)
	}
	if patch.Age != nil {
		set["age"] = *patch.Age
	}
	if patch.Gender != nil {
		set["gender"] = *patch.Gender
	}
	if patch.Nationality != nil {
		set["nationality"] = *patch.Nationality
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	result, err := s.UsersCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID.Hex())
	}
	return s.GetUserByID(ctx, userID)
}

func (s *UserService) RecordLogin(ctx context.Context, userID primitive.ObjectID) error {
	result, err := s.UsersCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"lastLoginAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to record login: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID.Hex())
	}
	return nil
}

// DeactivateUser is the soft-delete lifecycle: the user row survives so
// comments and tasks keep a resolvable author, but every membership the
// user holds is removed.
func (s *UserService) DeactivateUser(ctx context.Context, userID primitive.ObjectID) error {
	result, err := s.UsersCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"isActive": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID.Hex())
	}

	if _, err := s.MembershipsCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to remove memberships for user: %v", err)
	}
	return nil
}
