package render

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed-size pool of goroutines for tile rasterization.
//
// The pool distributes work items across per-worker queues. Workers pull
// from their own queue first and steal from others when idle, balancing
// load when some tiles are more expensive than others.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers; zero or
// negative uses GOMAXPROCS. Workers start immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.workQueues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return
		case work := <-myQueue:
			if work != nil {
				work()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
func (p *WorkerPool) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// Submit queues work items round-robin without waiting for completion.
// If the pool is closed the remaining items are executed inline so that
// completion signals still fire.
func (p *WorkerPool) Submit(work []func()) {
	for i, fn := range work {
		if !p.running.Load() {
			fn()
			continue
		}
		select {
		case p.workQueues[i%p.workers] <- fn:
		case <-p.done:
			fn()
		}
	}
}

// Close stops the pool after draining queued work. Close is idempotent.
func (p *WorkerPool) Close() {
	if p.running.CompareAndSwap(true, false) {
		close(p.done)
		p.wg.Wait()
	}
}
