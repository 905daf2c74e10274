package jobs

import (
	"fmt"
	"log"
	"sync"
)

// Job represents a unit of work
type Job struct {
	ID      string
	Execute func() error
}

// WorkerPool fans queries out over a fixed set of workers. The dashboard
// uses it for the cross-store serial-number scan, which touches all eight
// test-log databases per request.
type WorkerPool struct {
	workerCount int
	jobQueue    chan Job
	wg          sync.WaitGroup
	stopOnce    sync.Once
	done        chan struct{}
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount int) *WorkerPool {
	pool := &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan Job, workerCount*2), // Buffer size = 2x workers
		done:        make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// worker processes jobs from the queue
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			if err := job.Execute(); err != nil {
				log.Printf("worker %d: job %s failed: %v", id, job.ID, err)
			}
		case <-p.done:
			return
		}
	}
}

// Submit adds a job to the queue
func (p *WorkerPool) Submit(job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.done:
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Stop gracefully shuts down the worker pool
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		close(p.jobQueue)
		p.wg.Wait()
	})
}

// QueueSize returns the current number of jobs in queue
func (p *WorkerPool) QueueSize() int {
	return len(p.jobQueue)
}
