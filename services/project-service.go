package services

import (
	"context"
	"fmt"
	"time"

	"projecthub/backend/models"
	"projecthub/backend/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProjectService struct {
	ProjectsCollection    *mongo.Collection
	MembershipsCollection *mongo.Collection
	TasksCollection       *mongo.Collection
	Attachments           *storage.AttachmentStorage
}

func NewProjectService(projects, memberships, tasks *mongo.Collection, attachments *storage.AttachmentStorage) *ProjectService {
	return &ProjectService{
		ProjectsCollection:    projects,
		MembershipsCollection: memberships,
		TasksCollection:       tasks,
		Attachments:           attachments,
	}
}

// CreateProject validates and stores a new project. Status defaults to
// todo and priority to medium when unset.
func (s *ProjectService) CreateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	if project.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", models.ErrValidation)
	}
	if project.ManagerID.IsZero() {
		return nil, fmt.Errorf("%w: manager is required", models.ErrValidation)
	}
	if project.Status == "" {
		project.Status = models.ProjectTodo
	}
	if project.Priority == "" {
		project.Priority = models.PriorityMedium
	}
	if !project.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, project.Priority)
	}

	project.ID = primitive.NewObjectID()
	project.CreatedAt = time.Now()

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: project %q already exists", models.ErrConflict, project.Name)
		}
		return nil, fmt.Errorf("failed to create project: %v", err)
	}
	return &project, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: project %s", models.ErrNotFound, projectID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}
	return &project, nil
}

func (s *ProjectService) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	cursor, err := s.ProjectsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %v", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}
	return projects, nil
}

// UpdateProject applies the non-nil fields of the patch.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID primitive.ObjectID, patch models.ProjectPatch) (*models.Project, error) {
	set := bson.M{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("%w: project name cannot be empty", models.ErrValidation)
		}
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		switch *patch.Status {
		case models.ProjectTodo, models.ProjectInProgress, models.ProjectCompleted, models.ProjectOverdue:
			set["status"] = *patch.Status
		default:
			return nil, fmt.Errorf("%w: unknown project status %q", models.ErrValidation, *patch.Status)
		}
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, *patch.Priority)
		}
		set["priority"] = *patch.Priority
	}
	if patch.ManagerID != nil {
		managerID, err := primitive.ObjectIDFromHex(*patch.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid manager id", models.ErrValidation)
		}
		set["managerId"] = managerID
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	result, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": projectID}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: project %s", models.ErrNotFound, projectID.Hex())
	}
	return s.GetProjectByID(ctx, projectID)
}

// DeleteProject removes the project and cascades: attachments go first
// (objects before metadata, through the gateway), then memberships, then
// the tasks are detached from the project. A storage failure aborts the
// whole delete so no metadata row is ever orphaned.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID primitive.ObjectID) error {
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("%w: project %s", models.ErrNotFound, projectID.Hex())
		}
		return fmt.Errorf("failed to fetch project: %v", err)
	}

	if err := s.Attachments.DeleteAllForProject(ctx, projectID); err != nil {
		return err
	}

	if _, err := s.MembershipsCollection.DeleteMany(ctx, bson.M{"projectId": projectID}); err != nil {
		return fmt.Errorf("failed to delete memberships: %v", err)
	}

	// Tasks may stand alone, so they survive the project and lose only
	// the foreign key.
	if _, err := s.TasksCollection.UpdateMany(ctx,
		bson.M{"projectId": projectID},
		bson.M{"$unset": bson.M{"projectId": ""}}); err != nil {
		return fmt.Errorf("failed to detach tasks: %v", err)
	}

	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": projectID}); err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	return nil
}
