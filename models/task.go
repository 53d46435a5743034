package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in progress"
	StatusCompleted  TaskStatus = "completed"
	StatusOverdue    TaskStatus = "overdue"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID   *primitive.ObjectID `bson:"projectId,omitempty" json:"projectId,omitempty"`
	AssigneeID  primitive.ObjectID  `bson:"assigneeId" json:"assigneeId"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Deadline    time.Time           `bson:"deadline" json:"deadline"`
	Status      TaskStatus          `bson:"status" json:"status"`
	Priority    Priority            `bson:"priority" json:"priority"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// IsOverdueAt reports whether the task counts as overdue at the given
// moment. Overdue is derived: a completed task is never overdue, whatever
// its deadline, and a stored "overdue" status does not survive completion.
func (t *Task) IsOverdueAt(now time.Time) bool {
	return t.Status != StatusCompleted && now.After(t.Deadline)
}

type TaskPatch struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	AssigneeID  *string     `json:"assigneeId,omitempty"`
	ProjectID   *string     `json:"projectId,omitempty"`
}
