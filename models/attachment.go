package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment is the metadata half of a stored file; the bytes live in the
// object store under StorageKey. A metadata row must never be committed
// before its object exists, and must never outlive a failed object delete.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"projectId" json:"projectId"`
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	StorageKey  string             `bson:"storageKey" json:"-"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

// AttachmentInfo is the list shape: metadata plus a retrievable URL built
// from the storage key, without re-checking object existence.
type AttachmentInfo struct {
	ID          primitive.ObjectID `json:"id"`
	FileName    string             `json:"fileName"`
	ContentType string             `json:"contentType"`
	Size        int64              `json:"size"`
	URL         string             `json:"url"`
	UploadedAt  time.Time          `json:"uploadedAt"`
}

// UploadedAttachment is the slim shape returned by upload.
type UploadedAttachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// AttachmentResponse is the ok/error envelope the gateway hands back for
// upload and delete instead of a bare error.
type AttachmentResponse struct {
	Status     string              `json:"status"`
	Error      bool                `json:"error"`
	Attachment *UploadedAttachment `json:"attachment,omitempty"`
}
