package async

import (
	"context"
	"sync"

	"github.com/caseguard/riskmatrix/pkg/utils/errutil"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatcher runs handlers in background goroutines detached from the caller's
// cancellation. Wait blocks until every dispatched handler has returned.
type Dispatcher struct {
	wg sync.WaitGroup
}

// New creates a Dispatcher
func New() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch executes a handler function asynchronously in a new goroutine.
// It creates a background context carrying the caller's logger and handles errors and panics.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx).With("task", name))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", r)), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}

// Wait blocks until all dispatched handlers finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
