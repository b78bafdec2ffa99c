package linkwalk

import (
	"context"
	"fmt"
	"sync"
)

// Callback receives the outcome of a walk: err is nil on success and res is
// nil on failure.
type Callback func(err error, res *Result)

// Future is the eventual outcome of one walk. It settles exactly once.
type Future struct {
	once      sync.Once
	done      chan struct{}
	mu        sync.Mutex
	callbacks []Callback
	res       *Result
	err       error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// settle records the outcome and fires registered callbacks. Only the first
// call has any effect; it reports whether this call settled the future.
func (f *Future) settle(res *Result, err error) bool {
	settled := false

	f.once.Do(func() {
		settled = true

		if err != nil {
			res = nil
		} else if res == nil {
			err = ErrEmptyResponse
		}

		f.mu.Lock()
		f.res, f.err = res, err
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mu.Unlock()

		for _, cb := range callbacks {
			cb(err, res)
		}
	})

	return settled
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the walk settles or ctx is done. Cancelling ctx only
// stops the wait; cancel the context given to the terminal action to stop
// the walk itself.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()

		return f.res, f.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for walk: %w", ctx.Err())
	}
}

// Then registers cb to run exactly once with the outcome. If the future has
// already settled cb runs immediately on the calling goroutine, otherwise on
// the goroutine that settles it.
func (f *Future) Then(cb Callback) {
	f.mu.Lock()

	select {
	case <-f.done:
		res, err := f.res, f.err
		f.mu.Unlock()
		cb(err, res)
	default:
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
	}
}
