package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gotodo/apiserver/types"
)

// TodoRepository handles persistence for todos. Every query is scoped to
// an author; a todo belonging to another user is indistinguishable from a
// missing one.
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) ListByAuthor(ctx context.Context, author string) ([]types.Todo, error) {
	const query = `
		SELECT id, todo_name, is_complete, author, created_at, updated_at
		FROM todos
		WHERE author = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, author)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]types.Todo, 0)
	for rows.Next() {
		var todo types.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.Name,
			&todo.IsComplete,
			&todo.Author,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, author string, id int) (types.Todo, error) {
	const query = `
		SELECT id, todo_name, is_complete, author, created_at, updated_at
		FROM todos
		WHERE author = $1 AND id = $2`
	var todo types.Todo
	err := r.db.QueryRowContext(ctx, query, author, id).Scan(
		&todo.ID,
		&todo.Name,
		&todo.IsComplete,
		&todo.Author,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, err
	}
	return todo, nil
}

func (r *TodoRepository) Create(ctx context.Context, todo types.Todo) (types.Todo, error) {
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	const query = `
		INSERT INTO todos (todo_name, is_complete, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		todo.Name,
		todo.IsComplete,
		todo.Author,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID); err != nil {
		if isUniqueViolation(err) {
			return types.Todo{}, ErrConflict
		}
		return types.Todo{}, err
	}
	return todo, nil
}

// SetComplete updates the completion flag of the author's todo.
func (r *TodoRepository) SetComplete(ctx context.Context, author string, id int, complete bool) (types.Todo, error) {
	const query = `
		UPDATE todos
		SET is_complete = $1,
			updated_at = $2
		WHERE author = $3 AND id = $4`
	result, err := r.db.ExecContext(ctx, query, complete, time.Now(), author, id)
	if err != nil {
		return types.Todo{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Todo{}, err
	}
	if affected == 0 {
		return types.Todo{}, ErrNotFound
	}
	return r.GetByID(ctx, author, id)
}

func (r *TodoRepository) Delete(ctx context.Context, author string, id int) error {
	const query = `DELETE FROM todos WHERE author = $1 AND id = $2`
	result, err := r.db.ExecContext(ctx, query, author, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
