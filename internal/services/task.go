package services

import (
	"context"

	"github.com/taskdeck/apiserver/types"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID int) ([]types.Task, error)
	Get(ctx context.Context, id int) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, id int) error
}

// TaskService encapsulates task use-cases.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) ListByUser(ctx context.Context, userID int) ([]types.Task, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *TaskService) Get(ctx context.Context, id int) (types.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, task types.Task) (types.Task, error) {
	return s.repo.Create(ctx, task)
}

func (s *TaskService) Update(ctx context.Context, task types.Task) (types.Task, error) {
	return s.repo.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
