package services

import (
	"context"
	"strings"

	"github.com/gotodo/apiserver/types"
)

// TodoRepository defines persistence operations for todos.
type TodoRepository interface {
	ListByAuthor(ctx context.Context, author string) ([]types.Todo, error)
	GetByID(ctx context.Context, author string, id int) (types.Todo, error)
	Create(ctx context.Context, todo types.Todo) (types.Todo, error)
	SetComplete(ctx context.Context, author string, id int, complete bool) (types.Todo, error)
	Delete(ctx context.Context, author string, id int) error
}

// TodoService encapsulates todo use-cases, always scoped to an author.
type TodoService struct {
	repo TodoRepository
}

func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

func (s *TodoService) ListByAuthor(ctx context.Context, author string) ([]types.Todo, error) {
	return s.repo.ListByAuthor(ctx, author)
}

func (s *TodoService) GetByID(ctx context.Context, author string, id int) (types.Todo, error) {
	return s.repo.GetByID(ctx, author, id)
}

// Create persists a new incomplete todo for the author. The name is
// lowercased; duplicate names for the same author surface as a conflict
// from the repository.
func (s *TodoService) Create(ctx context.Context, author, name string) (types.Todo, error) {
	todo := types.Todo{
		Name:       strings.ToLower(strings.TrimSpace(name)),
		IsComplete: false,
		Author:     author,
	}
	return s.repo.Create(ctx, todo)
}

func (s *TodoService) SetComplete(ctx context.Context, author string, id int, complete bool) (types.Todo, error) {
	return s.repo.SetComplete(ctx, author, id, complete)
}

func (s *TodoService) Delete(ctx context.Context, author string, id int) error {
	return s.repo.Delete(ctx, author, id)
}
