package async

import (
	"context"
	"sync"
)

// Task is a named unit of work executed by the pool.
type Task struct {
	Name    string
	Execute func() error
}

// Result is the outcome of one task.
type Result struct {
	Name string
	Err  error
}

// Pool runs tasks across a fixed number of workers. It is built fresh per
// batch; Execute may only be called once per Pool.
type Pool struct {
	workerCount int
	tasks       chan Task
	results     chan Result
}

func NewPool(workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Pool{
		workerCount: workerCount,
		tasks:       make(chan Task),
		results:     make(chan Result),
	}
}

func (p *Pool) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.results <- Result{Name: task.Name, Err: task.Execute()}
		case <-ctx.Done():
			return
		}
	}
}

// Execute runs all tasks and returns results keyed by task name. Cancelling
// the context abandons remaining tasks; already collected results are
// returned.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	var wg sync.WaitGroup
	results := make(map[string]Result)

	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg)
	}

	go func() {
		for _, task := range tasks {
			select {
			case p.tasks <- task:
			case <-ctx.Done():
				return
			}
		}
		close(p.tasks)
	}()

	for i := 0; i < len(tasks); i++ {
		select {
		case result := <-p.results:
			results[result.Name] = result
		case <-ctx.Done():
			return results
		}
	}

	wg.Wait()
	close(p.results)

	return results
}
