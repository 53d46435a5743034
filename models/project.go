package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectTodo       ProjectStatus = "todo"
	ProjectInProgress ProjectStatus = "in progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOverdue    ProjectStatus = "overdue"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      ProjectStatus      `bson:"status" json:"status"`
	Priority    Priority           `bson:"priority" json:"priority"`
	ManagerID   primitive.ObjectID `bson:"managerId" json:"managerId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type ProjectPatch struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	Priority    *Priority      `json:"priority,omitempty"`
	ManagerID   *string        `json:"managerId,omitempty"`
}
