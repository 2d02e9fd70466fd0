package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/siteforge-io/design-engine/pkg/database"
	"github.com/siteforge-io/design-engine/pkg/models"
)

// TaskRepository persists the append-only audit trail of executed tasks.
type TaskRepository interface {
	// Create appends a task record. Records are never updated or deleted.
	Create(ctx context.Context, rec *models.TaskRecord) error

	// ListRecent retrieves the newest task records.
	ListRecent(ctx context.Context, limit int) ([]*models.TaskRecord, error)
}

type taskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task record repository.
func NewTaskRepository(db *database.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create appends a task record.
func (r *taskRepository) Create(ctx context.Context, rec *models.TaskRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO task_records (id, task_type, provider, prompt, result, cost,
			response_time_ms, estimated_tokens, success, error_kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.TaskType, rec.Provider, rec.Prompt, rec.Result, rec.Cost,
		rec.ResponseTime.Milliseconds(), rec.EstimatedTokens, rec.Success,
		rec.ErrorKind, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task record: %w", err)
	}
	return nil
}

// ListRecent retrieves the newest task records.
func (r *taskRepository) ListRecent(ctx context.Context, limit int) ([]*models.TaskRecord, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	query := `
		SELECT id, task_type, provider, prompt, result, cost, response_time_ms,
			estimated_tokens, success, error_kind, created_at
		FROM task_records
		ORDER BY created_at DESC, id
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list task records: %w", err)
	}
	defer rows.Close()

	var records []*models.TaskRecord
	for rows.Next() {
		var (
			rec        models.TaskRecord
			responseMs int64
		)
		err := rows.Scan(
			&rec.ID, &rec.TaskType, &rec.Provider, &rec.Prompt, &rec.Result,
			&rec.Cost, &responseMs, &rec.EstimatedTokens, &rec.Success,
			&rec.ErrorKind, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task record: %w", err)
		}
		rec.ResponseTime = time.Duration(responseMs) * time.Millisecond
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task records: %w", err)
	}
	return records, nil
}

// Ensure taskRepository implements TaskRepository at compile time.
var _ TaskRepository = (*taskRepository)(nil)
