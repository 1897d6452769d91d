package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTaskService(stub *taskCatalogStub) *TaskService {
	now := fixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewTaskService(stub, sequentialIDs("task-"), now, discardLogger())
}

func TestCreateTask_DefaultsToPending(t *testing.T) {
	t.Parallel()

	svc := newTestTaskService(newTaskCatalogStub())
	task, err := svc.CreateTask(context.Background(), TaskInput{
		TaskID: "TSK-001",
		Title:  "Inventory audit",
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected pending, got %q", task.Status)
	}
	if task.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestCreateTask_DuplicateReference(t *testing.T) {
	t.Parallel()

	svc := newTestTaskService(newTaskCatalogStub())
	input := TaskInput{TaskID: "TSK-001", Title: "Inventory audit"}
	if _, err := svc.CreateTask(context.Background(), input); err != nil {
		t.Fatalf("first CreateTask failed: %v", err)
	}
	input.Title = "Another audit"
	if _, err := svc.CreateTask(context.Background(), input); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateTask_ValidationErrors(t *testing.T) {
	t.Parallel()

	svc := newTestTaskService(newTaskCatalogStub())
	_, err := svc.CreateTask(context.Background(), TaskInput{Status: "someday"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"title", "status"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected field error for %s, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestCreateTask_GeneratesReference(t *testing.T) {
	t.Parallel()

	svc := newTestTaskService(newTaskCatalogStub())
	task, err := svc.CreateTask(context.Background(), TaskInput{Title: "Inventory audit"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if !strings.HasPrefix(task.TaskID, "TSK-") || len(task.TaskID) == len("TSK-") {
		t.Errorf("expected generated TSK-* reference, got %q", task.TaskID)
	}
}

func TestUpdateTask_ReferenceImmutable(t *testing.T) {
	t.Parallel()

	svc := newTestTaskService(newTaskCatalogStub(auditTask()))
	_, err := svc.UpdateTask(context.Background(), "task-1", TaskInput{
		TaskID: "TSK-999",
		Title:  "Inventory audit",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["task_ref"]; !ok {
		t.Errorf("expected task_ref field error, got %v", vErr.FieldErrors)
	}
}

func TestRemoveTask_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestTaskService(newTaskCatalogStub())
	if err := svc.RemoveTask(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
