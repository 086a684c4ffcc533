// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"sync"
	"time"

	"inspection-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every report worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
	GetTaskType() string
	IsEnabled() bool
}

// WorkerSettings are the per task type polling settings.
type WorkerSettings struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// WorkerManager opens one job worker per handler and closes them together.
type WorkerManager struct {
	client zbc.Client
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerManager(client zbc.Client, log logger.Logger) *WorkerManager {
	return &WorkerManager{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for h. Disabled handlers are skipped.
func (m *WorkerManager) Start(h JobHandler, settings WorkerSettings) error {
	taskType := h.GetTaskType()
	if !h.IsEnabled() {
		m.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.workers[taskType]; exists {
		return fmt.Errorf("worker for %s already started", taskType)
	}

	m.workers[taskType] = m.client.NewJobWorker().
		JobType(taskType).
		Handler(h.Handle).
		MaxJobsActive(settings.MaxJobsActive).
		Timeout(settings.Timeout).
		Name(fmt.Sprintf("%s-worker", taskType)).
		Open()

	m.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": settings.MaxJobsActive,
		"timeout":       settings.Timeout.String(),
	})
	return nil
}

// TaskTypes lists the task types with an open worker.
func (m *WorkerManager) TaskTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.workers))
	for t := range m.workers {
		types = append(types, t)
	}
	return types
}

// Stop closes every worker and waits for in-flight jobs to finish.
func (m *WorkerManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for taskType, w := range m.workers {
		m.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
	m.workers = make(map[string]worker.JobWorker)
}
