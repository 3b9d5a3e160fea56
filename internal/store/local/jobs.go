package local

import (
	"context"
	"fmt"
	"time"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
)

func (s *Store) CreateJob(ctx context.Context, job *models.BackgroundJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.JobID.String(), job.TaskType, job.Payload, job.Queue, job.Status, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert background job '%s': %w", job.JobID, err)
	}
	job.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, task_type, payload, queue, status, created_at, updated_at
		FROM background_jobs
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list background jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.BackgroundJob
	for rows.Next() {
		var job models.BackgroundJob
		if err := rows.Scan(&job.ID, &job.JobID, &job.TaskType, &job.Payload,
			&job.Queue, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}
