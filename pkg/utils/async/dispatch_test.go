package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/caseguard/riskmatrix/pkg/utils/async"
	"github.com/m-mizutani/gt"
)

func TestDispatcher(t *testing.T) {
	t.Run("runs handlers and waits for them", func(t *testing.T) {
		d := async.New()
		var called atomic.Int32

		for i := 0; i < 5; i++ {
			d.Dispatch(context.Background(), "count", func(ctx context.Context) error {
				called.Add(1)
				return nil
			})
		}
		d.Wait()

		gt.Value(t, called.Load()).Equal(int32(5))
	})

	t.Run("handler context is not canceled with the caller", func(t *testing.T) {
		d := async.New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var handlerErr atomic.Value
		d.Dispatch(ctx, "detached", func(ctx context.Context) error {
			if ctx.Err() != nil {
				handlerErr.Store(ctx.Err())
			}
			return nil
		})
		d.Wait()

		gt.Value(t, handlerErr.Load()).Nil()
	})

	t.Run("errors and panics do not escape", func(t *testing.T) {
		d := async.New()
		d.Dispatch(context.Background(), "fail", func(ctx context.Context) error {
			return errors.New("boom")
		})
		d.Dispatch(context.Background(), "panic", func(ctx context.Context) error {
			panic("boom")
		})
		d.Wait()
	})
}
