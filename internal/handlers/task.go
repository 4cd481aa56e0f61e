package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/apiserver/internal/activity"
	"github.com/taskdeck/apiserver/internal/services"
	"github.com/taskdeck/apiserver/internal/store"
	"github.com/taskdeck/apiserver/types"
)

// TaskHandler provides HTTP handlers for task CRUD.
type TaskHandler struct {
	taskService *services.TaskService
	userService *services.UserService
	activity    *activity.Logger
}

// NewTaskHandler constructs a handler with the provided services.
func NewTaskHandler(
	taskService *services.TaskService,
	userService *services.UserService,
	activityLog *activity.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		userService: userService,
		activity:    activityLog,
	}
}

// TaskRouter registers task routes on the given router. All routes
// require authentication.
func TaskRouter(
	r chi.Router,
	taskService *services.TaskService,
	userService *services.UserService,
	activityLog *activity.Logger,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewTaskHandler(taskService, userService, activityLog)

	r.Use(authMiddleware)
	r.Get("/", handler.ListTasks)
	r.Post("/", handler.CreateTask)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Put("/", handler.UpdateTask)
		r.Delete("/", handler.DeleteTask)
	})
}

// ListTasks returns every task owned by the authenticated user.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.resolveUser(w, r, "Task query failed")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.activity.Record(r.Context(), "Task query failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	h.activity.Record(r.Context(), "Task query successful", fmt.Sprintf("User: %s", user.Username))
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask creates a task owned by the authenticated user.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTaskRequest(w, r, "Task creation failed", "missing data to create the task")
	if !ok {
		return
	}

	user, ok := h.resolveUser(w, r, "Task creation failed")
	if !ok {
		return
	}

	task, err := h.taskService.Create(r.Context(), types.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		UserID:      user.ID,
	})
	if err != nil {
		h.activity.Record(r.Context(), "Task creation failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.activity.Record(r.Context(), "Task creation successful", fmt.Sprintf("User: %s, Task: %s", user.Username, task.Title))
	writeJSON(w, http.StatusCreated, TaskResponse{
		Message: "task created successfully",
		Task:    &task,
	})
}

// UpdateTask rewrites a task's title, description, and status. The task
// is looked up by id alone: any authenticated user may update any task.
// Known gap, kept until the ownership policy is decided.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		h.activity.Record(r.Context(), "Task update failed", "Invalid task id")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, ok := h.decodeTaskRequest(w, r, "Task update failed", "missing data to update the task")
	if !ok {
		return
	}

	username, _ := usernameFromContext(r.Context())

	task, err := h.taskService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.activity.Record(r.Context(), "Task update failed", "Task not found")
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.activity.Record(r.Context(), "Task update failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Status = req.Status

	updated, err := h.taskService.Update(r.Context(), task)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.activity.Record(r.Context(), "Task update failed", "Task not found")
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.activity.Record(r.Context(), "Task update failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.activity.Record(r.Context(), "Task update successful", fmt.Sprintf("User: %s, Task: %d", username, id))
	writeJSON(w, http.StatusOK, TaskResponse{
		Message: "task updated successfully",
		Task:    &updated,
	})
}

// DeleteTask removes a task by id alone, with the same missing
// ownership check as UpdateTask.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		h.activity.Record(r.Context(), "Task deletion failed", "Invalid task id")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username, _ := usernameFromContext(r.Context())

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.activity.Record(r.Context(), "Task deletion failed", "Task not found")
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.activity.Record(r.Context(), "Task deletion failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.activity.Record(r.Context(), "Task deletion successful", fmt.Sprintf("User: %s, Task: %d", username, id))
	writeJSON(w, http.StatusOK, TaskResponse{Message: "task deleted successfully"})
}

// TaskUpsertRequest is the JSON payload for create and update.
type TaskUpsertRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// TaskResponse wraps a task mutation result.
type TaskResponse struct {
	Message string      `json:"message"`
	Task    *types.Task `json:"task,omitempty"`
}

func (h *TaskHandler) decodeTaskRequest(w http.ResponseWriter, r *http.Request, action, missingMsg string) (TaskUpsertRequest, bool) {
	var req TaskUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.activity.Record(r.Context(), action, "Invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request")
		return TaskUpsertRequest{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Status = strings.TrimSpace(req.Status)
	if req.Title == "" || req.Description == "" || req.Status == "" {
		h.activity.Record(r.Context(), action, "Missing data")
		writeError(w, http.StatusBadRequest, missingMsg)
		return TaskUpsertRequest{}, false
	}
	return req, true
}

// resolveUser maps the authenticated username to its user row. A row
// that has vanished since the token was issued yields 404.
func (h *TaskHandler) resolveUser(w http.ResponseWriter, r *http.Request, action string) (types.User, bool) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		h.activity.Record(r.Context(), action, "Missing identity")
		writeError(w, http.StatusUnauthorized, "no token provided")
		return types.User{}, false
	}

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.activity.Record(r.Context(), action, "User not found")
			writeError(w, http.StatusNotFound, "user not found")
			return types.User{}, false
		}
		h.activity.Record(r.Context(), action, fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return types.User{}, false
	}
	return user, true
}

func parseTaskID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "taskID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid task id")
	}
	return id, nil
}
