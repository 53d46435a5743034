package services

import (
	"context"
	"fmt"
	"time"

	"projecthub/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentService appends immutable comments to tasks. There is no update
// or delete path anywhere; the thread only grows.
type CommentService struct {
	CommentsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	UsersCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
	Notifications      Notifier
}

func NewCommentService(comments, tasks, users, projects *mongo.Collection, notifications Notifier) *CommentService {
	return &CommentService{
		CommentsCollection: comments,
		TasksCollection:    tasks,
		UsersCollection:    users,
		ProjectsCollection: projects,
		Notifications:      notifications,
	}
}

// AddComment writes a comment with a server-assigned timestamp and returns
// it augmented with the author's display name. The task's assignee and the
// project manager are notified, unless they authored the comment.
func (s *CommentService) AddComment(ctx context.Context, taskID, authorID primitive.ObjectID, text string) (*models.CommentWithAuthor, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", models.ErrValidation)
	}

	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, taskID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	var author models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": authorID}).Decode(&author); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, authorID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch author: %v", err)
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if _, err := s.CommentsCollection.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %v", err)
	}

	s.notifyWatchers(ctx, &task, &author)

	return &models.CommentWithAuthor{Comment: comment, AuthorName: author.Name}, nil
}

// ListComments returns the thread ordered by creation time ascending. The
// listing is restartable: every call re-issues the query against the
// store, so a caller can walk the thread again from the start at any time.
func (s *CommentService) ListComments(ctx context.Context, taskID primitive.ObjectID) ([]models.CommentWithAuthor, error) {
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, taskID.Hex())
		}
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.CommentsCollection.Find(ctx, bson.M{"taskId": taskID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %v", err)
	}
	defer cursor.Close(ctx)

	comments := []models.CommentWithAuthor{}
	names := map[primitive.ObjectID]string{}
	for cursor.Next(ctx) {
		var c models.Comment
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %v", err)
		}

		name, ok := names[c.AuthorID]
		if !ok {
			var author models.User
			if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": c.AuthorID}).Decode(&author); err == nil {
				name = author.Name
			}
			names[c.AuthorID] = name
		}

		comments = append(comments, models.CommentWithAuthor{Comment: c, AuthorName: name})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return comments, nil
}

// notifyWatchers fires the comment-added notifications. Failures are
// logged, never propagated; the comment is already committed.
func (s *CommentService) notifyWatchers(ctx context.Context, task *models.Task, author *models.User) {
	message := fmt.Sprintf("%s commented on task %q.", author.Name, task.Name)

	if task.AssigneeID != author.ID {
		if err := s.Notifications.Notify(task.AssigneeID.Hex(), "New comment", message); err != nil {
			logNotificationFailure("comment added (assignee)", err)
		}
	}

	if task.ProjectID == nil {
		return
	}
	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": *task.ProjectID}).Decode(&project); err != nil {
		return
	}
	if project.ManagerID != author.ID && project.ManagerID != task.AssigneeID {
		if err := s.Notifications.Notify(project.ManagerID.Hex(), "New comment", message); err != nil {
			logNotificationFailure("comment added (manager)", err)
		}
	}
}
