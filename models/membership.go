package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectRole is a closed set. Unknown role strings are rejected at the
// boundary instead of being stored as free text.
type ProjectRole string

const (
	RoleManager ProjectRole = "manager"
	RoleLeader  ProjectRole = "leader"
	RoleMember  ProjectRole = "member"
)

func (r ProjectRole) Valid() bool {
	switch r {
	case RoleManager, RoleLeader, RoleMember:
		return true
	}
	return false
}

// Membership binds a user to a project with a role. The memberships
// collection carries a unique index on (projectId, userId), so at most one
// membership can exist per pair no matter how many writers race.
type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"projectId" json:"projectId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Role      ProjectRole        `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// MemberInfo is the read shape for listing project members.
type MemberInfo struct {
	UserID primitive.ObjectID `json:"userId"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Role   ProjectRole        `json:"role"`
}
