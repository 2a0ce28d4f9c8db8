package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results are returned in submission order.
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	results    chan indexedResult
	collected  []Result
	submitted  int
	wg         sync.WaitGroup
	collectWG  sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	mu         sync.Mutex
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2),
		results:    make(chan indexedResult, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- indexedResult{index: ij.index, result: ij.job.Execute(p.ctx)}
		}
	}
}

// collect drains results so workers never block on a full channel
func (p *Pool) collect() {
	defer p.collectWG.Done()

	for ir := range p.results {
		p.mu.Lock()
		for len(p.collected) <= ir.index {
			p.collected = append(p.collected, nil)
		}
		p.collected[ir.index] = ir.result
		p.mu.Unlock()
	}
}

// Submit queues a job. It returns false once the pool's context is done.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{index: index, job: job}:
		return true
	}
}

// Wait waits for all submitted jobs and returns one entry per Submit call,
// in order. Jobs that never ran because the context ended have a nil entry.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Result, p.submitted)
	copy(out, p.collected)
	return out
}

// Shutdown cancels outstanding work and waits for workers to exit
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
