package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/staff-scheduler/internal/application"
	"github.com/example/staff-scheduler/internal/persistence"
)

type taskService interface {
	CreateTask(ctx context.Context, input application.TaskInput) (persistence.Task, error)
	UpdateTask(ctx context.Context, id string, input application.TaskInput) (persistence.Task, error)
	GetTask(ctx context.Context, id string) (persistence.Task, error)
	ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error)
	RemoveTask(ctx context.Context, id string) error
}

// TaskHandler serves the /tasks surface.
type TaskHandler struct {
	service   taskService
	responder responder
}

func NewTaskHandler(service taskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: service, responder: newResponder(logger)}
}

type taskRequest struct {
	TaskRef     string `json:"task_ref"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

func (req taskRequest) toInput() application.TaskInput {
	return application.TaskInput{
		TaskID:      req.TaskRef,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	task, err := h.service.CreateTask(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusCreated, "task created", newTaskView(task))
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	tasks, err := h.service.ListTasks(r.Context(), persistence.TaskFilter{
		Category: query.Get("category"),
		Status:   query.Get("status"),
		Search:   query.Get("search"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]taskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, newTaskView(task))
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", views)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetTask(r.Context(), taskID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", newTaskView(task))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), taskID, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "task updated", newTaskView(task))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveTask(r.Context(), taskID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return "", false
	}
	return taskID, true
}
