package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/tasks"
)

// AsynqJobClient enqueues background tasks over Redis.
var _ JobClient = (*AsynqJobClient)(nil)

type AsynqJobClient struct {
	client *asynq.Client
	jobs   JobStore
}

func NewAsynqJobClient(redisAddr, password string, db int, jobs JobStore) (*AsynqJobClient, error) {
	if redisAddr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	cli := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
	return &AsynqJobClient{client: cli, jobs: jobs}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("asynq client is not initialized")
	}
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.Errorf("Failed to enqueue task type '%s': %v", task.Type(), err)
		return nil, err
	}
	log.Debugf("Enqueued task type '%s' on queue '%s' (id: %s)", task.Type(), info.Queue, info.ID)
	jc.recordJob(ctx, task, info)
	return info, nil
}

// recordJob writes an audit row for the enqueued task. Recording is best
// effort: the task is already on the queue.
func (jc *AsynqJobClient) recordJob(ctx context.Context, task *asynq.Task, info *asynq.TaskInfo) {
	if jc.jobs == nil {
		return
	}
	job := &models.BackgroundJob{
		JobID:    uuid.New(),
		TaskType: task.Type(),
		Payload:  task.Payload(),
		Queue:    info.Queue,
		Status:   "enqueued",
	}
	if err := jc.jobs.CreateJob(ctx, job); err != nil {
		log.Errorf("Failed to record background job for task '%s': %v", task.Type(), err)
	}
}

// EnqueueLibraryRebuild schedules a cache rebuild for the given clientlib
// categories. An empty slice rebuilds everything.
func (jc *AsynqJobClient) EnqueueLibraryRebuild(ctx context.Context, categories []string) error {
	payload, err := json.Marshal(tasks.LibraryRebuildPayload{Categories: categories})
	if err != nil {
		return fmt.Errorf("marshal rebuild payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeLibraryRebuild, payload)
	_, err = jc.Enqueue(ctx, task, asynq.MaxRetry(3))
	return err
}
