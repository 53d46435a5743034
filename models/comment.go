package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is append-only: no update or delete exists anywhere in the
// module, and CreatedAt is assigned by the server when the row is written.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID    primitive.ObjectID `bson:"taskId" json:"taskId"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CommentWithAuthor augments a comment with the author's display name so
// readers do not have to join against the users collection themselves.
type CommentWithAuthor struct {
	Comment    `bson:",inline"`
	AuthorName string `bson:"authorName" json:"authorName"`
}
