package worker

import (
	"context"
	"image"
	"log"
	"sync"

	"vr-dimension/src/eye"
	"vr-dimension/src/screenshot"
	"vr-dimension/src/window"
)

// GrabFunc captures the pixels inside a window's bounding box.
type GrabFunc func(b window.Bounds) (*image.RGBA, error)

// ResultCallback is invoked on frame completion (from a worker goroutine).
// The event loop passes a closure that posts back into the loop.
type ResultCallback func(frame *image.RGBA, err error)

// Job is one frame: where to grab and how to process it.
type Job struct {
	Bounds window.Bounds
	Params eye.Params
}

// Pool is a fixed-size frame worker pool with a 1-slot input queue. When
// the queue is full Submit drops the frame, so a slow pipeline lowers the
// effective frame rate instead of building a backlog.
type Pool struct {
	grab GrabFunc
	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

type job struct {
	ctx context.Context
	Job
	cb ResultCallback
}

// New creates a pool with size workers (1 when size<=0). A nil grab uses
// screenshot.CaptureBounds.
func New(size int, grab GrabFunc) *Pool {
	if size <= 0 {
		size = 1
	}
	if grab == nil {
		grab = screenshot.CaptureBounds
	}
	p := &Pool{grab: grab, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				frame, err := p.run(j)
				j.cb(frame, err)
			}
		}()
	}
}

func (p *Pool) run(j job) (*image.RGBA, error) {
	if err := j.ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := p.grab(j.Bounds)
	if err != nil {
		return nil, err
	}
	if err := j.ctx.Err(); err != nil {
		return nil, err
	}
	out, err := eye.Process(raw, j.Params)
	if err != nil {
		log.Printf("Worker: pipeline failed for %v: %v", j.Bounds, err)
		return nil, err
	}
	return out, nil
}

// Submit enqueues a frame job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, j Job, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, Job: j, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Safe to call twice.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}
