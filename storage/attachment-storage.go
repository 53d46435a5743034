package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"projecthub/backend/config"
	"projecthub/backend/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const statRetries = 3

// ObjectStore is the slice of the object-store client the gateway actually
// uses. *minio.Client satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// AttachmentStorage bridges attachment metadata rows in Mongo to file
// content in an S3-compatible object store. It owns the ordering invariant
// between the two: on upload the object is written before the metadata row
// is committed, on delete the object is removed before the metadata row.
type AttachmentStorage struct {
	store       ObjectStore
	baseURL     string
	bucket      string
	attachments *mongo.Collection
	breaker     *gobreaker.CircuitBreaker
	logger      *logrus.Logger
}

// NewAttachmentStorage connects to the object store with the injected
// options and creates the bucket when it does not exist yet.
func NewAttachmentStorage(cfg config.StorageConfig, attachments *mongo.Collection, logger *logrus.Logger) (*AttachmentStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %v", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %v", cfg.Bucket, err)
		}
		logger.Infof("Created bucket %s", cfg.Bucket)
	}

	return &AttachmentStorage{
		store:       client,
		baseURL:     client.EndpointURL().String(),
		bucket:      cfg.Bucket,
		attachments: attachments,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "object-store",
		}),
		logger: logger,
	}, nil
}

// ObjectURL builds a retrievable URL for a stored key without touching the
// store.
func (s *AttachmentStorage) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key)
}

// List enumerates attachment metadata for a project. Object existence is
// deliberately not re-verified here; this is the cheap path.
func (s *AttachmentStorage) List(ctx context.Context, projectID primitive.ObjectID) ([]models.AttachmentInfo, error) {
	cursor, err := s.attachments.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %v", err)
	}
	defer cursor.Close(ctx)

	infos := []models.AttachmentInfo{}
	for cursor.Next(ctx) {
		var a models.Attachment
		if err := cursor.Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode attachment: %v", err)
		}
		infos = append(infos, models.AttachmentInfo{
			ID:          a.ID,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
			URL:         s.ObjectURL(a.StorageKey),
			UploadedAt:  a.UploadedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return infos, nil
}

// Upload writes the content to the object store first and commits the
// metadata row only after the write succeeded. A crash or cancellation in
// between leaves an orphaned object, never a dangling metadata row.
// Duplicate file names within a project are rejected with Conflict; the
// unique index on (projectId, fileName) closes the race two concurrent
// uploads would otherwise open.
func (s *AttachmentStorage) Upload(ctx context.Context, projectID primitive.ObjectID, fileName, contentType string, size int64, content io.Reader) (*models.Attachment, error) {
	fileName = SanitizeFileName(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", models.ErrValidation)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Cheap pre-check so we do not ship bytes we already know will be
	// rejected. The index is still the authority.
	err := s.attachments.FindOne(ctx, bson.M{"projectId": projectID, "fileName": fileName}).Err()
	if err == nil {
		return nil, fmt.Errorf("%w: attachment %q already exists in project", models.ErrConflict, fileName)
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to check for existing attachment: %v", err)
	}

	key := BuildObjectKey(projectID, fileName)
	info, err := s.store.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Errorf("Object write failed for key %s: %v", key, err)
		return nil, fmt.Errorf("%w: object write failed: %v", models.ErrStorage, err)
	}

	// The request may have been aborted while the bytes were in flight.
	// The object is harmless garbage at this point; committing metadata
	// for a cancelled request is not.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: upload cancelled: %v", models.ErrStorage, ctx.Err())
	}

	attachment := &models.Attachment{
		ID:          primitive.NewObjectID(),
		ProjectID:   projectID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        info.Size,
		StorageKey:  key,
		UploadedAt:  time.Now(),
	}

	if _, err := s.attachments.InsertOne(ctx, attachment); err != nil {
		// Losing the race to another upload of the same name: drop our
		// object again, best effort.
		s.removeObject(key)
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: attachment %q already exists in project", models.ErrConflict, fileName)
		}
		return nil, fmt.Errorf("failed to save attachment metadata: %v", err)
	}

	s.logger.Infof("Uploaded attachment %s (%d bytes) to project %s", fileName, info.Size, projectID.Hex())
	return attachment, nil
}

// Download streams an attachment's content. A metadata row without a
// backing object is a reconciliation violation and is surfaced as
// Inconsistent, never papered over with an empty stream.
func (s *AttachmentStorage) Download(ctx context.Context, attachmentID primitive.ObjectID) (io.ReadCloser, *models.Attachment, error) {
	var attachment models.Attachment
	err := s.attachments.FindOne(ctx, bson.M{"_id": attachmentID}).Decode(&attachment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, fmt.Errorf("%w: attachment %s", models.ErrNotFound, attachmentID.Hex())
		}
		return nil, nil, fmt.Errorf("failed to fetch attachment metadata: %v", err)
	}

	if err := s.statObject(ctx, attachment.StorageKey); err != nil {
		return nil, nil, err
	}

	object, err := s.store.GetObject(ctx, s.bucket, attachment.StorageKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: object read failed: %v", models.ErrStorage, err)
	}
	return object, &attachment, nil
}

// Delete removes the object first and only then the metadata row. When the
// object delete fails the metadata row stays, keeping the invariant that
// every row has a backing object.
func (s *AttachmentStorage) Delete(ctx context.Context, attachmentID primitive.ObjectID) error {
	var attachment models.Attachment
	err := s.attachments.FindOne(ctx, bson.M{"_id": attachmentID}).Decode(&attachment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("%w: attachment %s", models.ErrNotFound, attachmentID.Hex())
		}
		return fmt.Errorf("failed to fetch attachment metadata: %v", err)
	}

	if err := s.store.RemoveObject(ctx, s.bucket, attachment.StorageKey, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Errorf("Object delete failed for key %s, keeping metadata: %v", attachment.StorageKey, err)
		return fmt.Errorf("%w: object delete failed: %v", models.ErrStorage, err)
	}

	if _, err := s.attachments.DeleteOne(ctx, bson.M{"_id": attachmentID}); err != nil {
		return fmt.Errorf("failed to delete attachment metadata: %v", err)
	}

	s.logger.Infof("Deleted attachment %s from project %s", attachment.FileName, attachment.ProjectID.Hex())
	return nil
}

// DeleteAllForProject removes every attachment of a project, object first
// for each. The first storage failure aborts the cascade so no metadata row
// is ever orphaned.
func (s *AttachmentStorage) DeleteAllForProject(ctx context.Context, projectID primitive.ObjectID) error {
	cursor, err := s.attachments.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return fmt.Errorf("failed to list attachments for cascade: %v", err)
	}
	defer cursor.Close(ctx)

	var attachments []models.Attachment
	if err := cursor.All(ctx, &attachments); err != nil {
		return fmt.Errorf("failed to decode attachments for cascade: %v", err)
	}

	for _, a := range attachments {
		if err := s.store.RemoveObject(ctx, s.bucket, a.StorageKey, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("%w: object delete failed for %s: %v", models.ErrStorage, a.FileName, err)
		}
		if _, err := s.attachments.DeleteOne(ctx, bson.M{"_id": a.ID}); err != nil {
			return fmt.Errorf("failed to delete metadata for %s: %v", a.FileName, err)
		}
	}
	return nil
}

// statObject verifies object existence through the circuit breaker with a
// small bounded retry. Only this idempotent read is retried; writes are
// surfaced immediately to avoid double-write ambiguity.
func (s *AttachmentStorage) statObject(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		var lastErr error
		for attempt := 0; attempt < statRetries; attempt++ {
			_, lastErr = s.store.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
			if lastErr == nil {
				return nil, nil
			}
			if minio.ToErrorResponse(lastErr).Code == "NoSuchKey" {
				return nil, lastErr
			}
			if attempt < statRetries-1 {
				time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
			}
		}
		return nil, lastErr
	})
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		s.logger.Errorf("Metadata exists but object %s is missing from the store", key)
		return fmt.Errorf("%w: object %s missing despite metadata", models.ErrInconsistent, key)
	}
	return fmt.Errorf("%w: object stat failed: %v", models.ErrStorage, err)
}

// removeObject is the best-effort cleanup used when a metadata commit loses
// a race after the object was already written.
func (s *AttachmentStorage) removeObject(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Errorf("Failed to clean up orphaned object %s: %v", key, err)
	}
}
