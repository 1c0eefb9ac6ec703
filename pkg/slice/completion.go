package slice

import (
	"context"
	"fmt"
	"sync"
)

// Completion reports the outcome of a render operation that may still be
// running.
//
// The zero value is a successful, already finished render. Completions that
// finished inline carry no heap state; only renders that genuinely suspend
// allocate a promise.
type Completion struct {
	p   *promise
	err error
}

type promise struct {
	done chan struct{}
	once sync.Once
	err  error
}

func (p *promise) resolve(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done returns a completion that has already finished successfully.
func Done() Completion {
	return Completion{}
}

// Failed returns a completion that has already finished with err. A nil err
// is the same as Done.
func Failed(err error) Completion {
	return Completion{err: err}
}

// NewPromise returns a pending completion together with the function that
// resolves it. Only the first call to resolve has any effect.
func NewPromise() (Completion, func(error)) {
	p := &promise{done: make(chan struct{})}
	return Completion{p: p}, p.resolve
}

// Go runs fn on a new goroutine and returns a completion that resolves with
// its result. A panic inside fn resolves the completion with ErrRenderPanic.
func Go(fn func() error) Completion {
	c, resolve := NewPromise()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resolve(fmt.Errorf("%w: %v", ErrRenderPanic, r))
			}
		}()
		resolve(fn())
	}()
	return c
}

// Ready reports whether the operation has finished. It never blocks.
func (c Completion) Ready() bool {
	if c.p == nil {
		return true
	}
	select {
	case <-c.p.done:
		return true
	default:
		return false
	}
}

// Pending reports whether the completion is backed by an asynchronous
// promise, whether or not that promise has resolved yet.
func (c Completion) Pending() bool {
	return c.p != nil
}

// Wait blocks until the operation finishes or ctx is done. Returning early on
// ctx does not stop the operation; cancelling it is up to the unit that
// received the same context.
func (c Completion) Wait(ctx context.Context) error {
	if c.p == nil {
		return c.err
	}
	select {
	case <-c.p.done:
		return c.p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait blocks until the operation finishes.
func (c Completion) wait() error {
	if c.p == nil {
		return c.err
	}
	<-c.p.done
	return c.p.err
}

// Inline inspects c without blocking. When the operation has already
// finished, done is true and err is its result, so the caller can continue on
// the current goroutine without allocating. When done is false the caller
// must fall back to an asynchronous continuation.
func Inline(c Completion) (done bool, err error) {
	if c.p == nil {
		return true, c.err
	}
	select {
	case <-c.p.done:
		return true, c.p.err
	default:
		return false, nil
	}
}

// await continues asynchronously once c finishes, running then on the
// result. It is the slow path behind Inline.
func await(c Completion, then func(error) Completion) Completion {
	return Go(func() error {
		return then(c.wait()).wait()
	})
}

// settle converts a finished result into a Completion without keeping the
// original promise alive.
func settle(err error) Completion {
	if err != nil {
		return Failed(err)
	}
	return Done()
}
