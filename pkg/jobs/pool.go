package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task is one unit of work in a bulk run, keyed for reporting.
type Task struct {
	Key     string
	Payload interface{}
}

// Handler executes a single task.
type Handler func(context.Context, Task) error

// PoolConfig bounds worker pool behaviour.
type PoolConfig struct {
	Workers int
	Logger  *zap.Logger
}

// Pool executes a fixed set of tasks with bounded concurrency and collects
// per-task errors. One task's failure never stops the others; the caller gets
// a complete error map keyed by task.
type Pool struct {
	workers int
	logger  *zap.Logger
}

// NewPool builds a pool with the provided bounds.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool{workers: cfg.Workers, logger: cfg.Logger}
}

// Run dispatches all tasks to workers and blocks until every task has been
// handled. Each task sees the supplied context; cancellation drains the
// remaining tasks without executing them, recording ctx.Err() for each.
func (p *Pool) Run(ctx context.Context, tasks []Task, handler Handler) map[string]error {
	if len(tasks) == 0 {
		return map[string]error{}
	}

	workers := p.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	type outcome struct {
		key string
		err error
	}

	taskCh := make(chan Task)
	outcomes := make(chan outcome, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				if err := ctx.Err(); err != nil {
					outcomes <- outcome{key: task.Key, err: err}
					continue
				}
				err := handler(ctx, task)
				if err != nil {
					p.logger.Sugar().Warnw("task failed", "key", task.Key, "error", err)
				}
				outcomes <- outcome{key: task.Key, err: err}
			}
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()
	close(outcomes)

	errs := make(map[string]error, len(tasks))
	for o := range outcomes {
		errs[o.key] = o.err
	}
	return errs
}
