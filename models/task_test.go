package models

import (
	"testing"
	"time"
)

func TestIsOverdueAt(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name     string
		deadline time.Time
		status   TaskStatus
		want     bool
	}{
		{"past deadline, todo", past, StatusTodo, true},
		{"past deadline, in progress", past, StatusInProgress, true},
		{"past deadline, already marked overdue", past, StatusOverdue, true},
		{"past deadline, completed", past, StatusCompleted, false},
		{"future deadline, todo", future, StatusTodo, false},
		{"future deadline, completed", future, StatusCompleted, false},
		{"deadline exactly now", now, StatusTodo, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := Task{Deadline: tc.deadline, Status: tc.status}
			if got := task.IsOverdueAt(now); got != tc.want {
				t.Errorf("IsOverdueAt() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompletionClearsOverdue(t *testing.T) {
	now := time.Now()
	task := Task{Deadline: now.Add(-24 * time.Hour), Status: StatusOverdue}
	if !task.IsOverdueAt(now) {
		t.Fatal("expected task past its deadline to be overdue")
	}

	task.Status = StatusCompleted
	if task.IsOverdueAt(now) {
		t.Error("completed task must not be overdue even with a past deadline")
	}
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted, StatusOverdue} {
		if !s.Valid() {
			t.Errorf("%q should be a valid status", s)
		}
	}
	if TaskStatus("done").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestProjectRoleValid(t *testing.T) {
	for _, r := range []ProjectRole{RoleManager, RoleLeader, RoleMember} {
		if !r.Valid() {
			t.Errorf("%q should be a valid role", r)
		}
	}
	for _, r := range []ProjectRole{"", "admin", "Leader"} {
		if r.Valid() {
			t.Errorf("%q should be rejected", r)
		}
	}
}
