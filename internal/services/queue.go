package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/pkg/logger"
)

const TaskTypeFileDelete = "file:delete"

type fileDeletePayload struct {
	FileID uint `json:"file_id"`
}

// TaskQueue defers file deletions (replaced images, cascade deletes) to an
// async worker when Redis is enabled. Callers fall back to inline deletion
// when the queue is nil.
type TaskQueue struct {
	client  *asynq.Client
	server  *asynq.Server
	mux     *asynq.ServeMux
	files   *FileService
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewTaskQueue returns nil when the queue is disabled.
func NewTaskQueue(cfg *config.RedisConfig, files *FileService) *TaskQueue {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warnf("[Queue] error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &TaskQueue{
		client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
		files:  files,
	}
}

// EnqueueFileDelete schedules removal of a file's bytes and metadata.
func (q *TaskQueue) EnqueueFileDelete(fileID uint) error {
	payload, err := json.Marshal(fileDeletePayload{FileID: fileID})
	if err != nil {
		return err
	}
	_, err = q.client.Enqueue(asynq.NewTask(TaskTypeFileDelete, payload))
	return err
}

// Start begins processing tasks.
func (q *TaskQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return nil
	}

	q.mux.HandleFunc(TaskTypeFileDelete, q.handleFileDelete)

	q.running = true
	q.wg.Add(1)

	go func() {
		defer q.wg.Done()
		logger.Infof("[Queue] starting async worker")
		if err := q.server.Run(q.mux); err != nil {
			logger.Errorf("[Queue] server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker.
func (q *TaskQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	q.server.Shutdown()
	q.client.Close()
	q.running = false
	q.wg.Wait()
	logger.Infof("[Queue] shutdown complete")
}

func (q *TaskQueue) handleFileDelete(ctx context.Context, t *asynq.Task) error {
	var payload fileDeletePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	return q.files.Delete(ctx, payload.FileID)
}
