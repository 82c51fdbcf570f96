package worker

import (
	"log/slog"
	"sync"
)

type Job func()

// Pool runs submitted jobs on a fixed set of workers fed by one shared
// queue. A worker executes each job to completion before taking the next,
// and a panicking job is logged and swallowed rather than taking the
// worker down with it.
type Pool struct {
	jobs   chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int, logger *slog.Logger) *Pool {
	p := &Pool{
		jobs:   make(chan Job, queueSize),
		logger: logger,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(id, job)
			}
		}(i)
	}
	return p
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "worker", id, "panic", r)
		}
	}()
	job()
}

// Submit enqueues a job, blocking while the queue is full. It reports
// false once the pool is closed. The send happens outside the mutex so
// a Submit stalled on a full queue cannot hold up Close; if Close wins
// the race the send panics on the closed channel and is reported as a
// rejection.
func (p *Pool) Submit(job Job) (ok bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	p.jobs <- job
	return true
}

// Close stops admitting jobs. Queued and in-flight jobs still run.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.jobs)
}

// Wait blocks until every worker has drained the queue and exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}
