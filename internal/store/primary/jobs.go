package primary

import (
	"context"
	"fmt"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
)

func (s *StoreImpl) CreateJob(ctx context.Context, job *models.BackgroundJob) error {
	job.CreatedAt = nowUTC()
	job.UpdatedAt = job.CreatedAt
	err := s.db.QueryRow(ctx, `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		job.JobID.String(), job.TaskType, job.Payload, job.Queue, job.Status,
		job.CreatedAt, job.UpdatedAt).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("insert background job '%s': %w", job.JobID, err)
	}
	return nil
}

func (s *StoreImpl) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, job_id, task_type, payload, queue, status, created_at, updated_at
		FROM background_jobs
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
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
