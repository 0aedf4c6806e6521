package password

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("password pool closed")

// dummyPlaintext seeds the fixed hash used by VerifyMissing.
const dummyPlaintext = "authservice-dummy-password"

// Pool runs Argon2 work on a fixed set of worker goroutines so request
// goroutines only wait on a result channel.
type Pool struct {
	hasher *Argon2
	jobs   chan func()
	done   chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once

	dummyOnce sync.Once
	dummyHash string
}

// NewPool starts workers goroutines; workers <= 0 means GOMAXPROCS.
func NewPool(hasher *Argon2, workers int) (*Pool, error) {
	if hasher == nil {
		return nil, errors.New("password pool requires a hasher")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		hasher: hasher,
		jobs:   make(chan func(), workers),
		done:   make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}

	return p, nil
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.done:
			for {
				select {
				case job := <-p.jobs:
					job()
				default:
					return
				}
			}
		}
	}
}

type hashResult struct {
	hash string
	ok   bool
	err  error
}

func (p *Pool) do(ctx context.Context, work func() hashResult) hashResult {
	select {
	case <-p.done:
		return hashResult{err: ErrPoolClosed}
	default:
	}

	out := make(chan hashResult, 1)
	job := func() { out <- work() }

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return hashResult{err: ctx.Err()}
	case <-p.done:
		return hashResult{err: ErrPoolClosed}
	}

	select {
	case r := <-out:
		return r
	case <-ctx.Done():
		return hashResult{err: ctx.Err()}
	case <-p.done:
		select {
		case r := <-out:
			return r
		default:
			return hashResult{err: ErrPoolClosed}
		}
	}
}

// Hash computes a PHC hash of plaintext on a worker.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	r := p.do(ctx, func() hashResult {
		h, err := p.hasher.Hash(plaintext)
		return hashResult{hash: h, err: err}
	})
	return r.hash, r.err
}

// Verify checks plaintext against encoded on a worker.
func (p *Pool) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	r := p.do(ctx, func() hashResult {
		ok, err := p.hasher.Verify(plaintext, encoded)
		return hashResult{ok: ok, err: err}
	})
	return r.ok, r.err
}

// VerifyMissing runs one verification against a fixed hash and discards
// the outcome.
func (p *Pool) VerifyMissing(ctx context.Context, plaintext string) {
	p.dummyOnce.Do(func() {
		p.dummyHash, _ = p.Hash(context.Background(), dummyPlaintext)
	})
	if p.dummyHash == "" {
		return
	}
	_, _ = p.Verify(ctx, plaintext, p.dummyHash)
}

// Close stops the workers after queued jobs finish. It is safe to call
// more than once.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}
