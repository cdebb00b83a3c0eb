package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoughtburn/internal/pkg/async"
)

func TestPoolExecute(t *testing.T) {
	t.Run("collects every result by name", func(t *testing.T) {
		var tasks []async.Task[int]
		for i := 0; i < 20; i++ {
			tasks = append(tasks, async.Task[int]{
				Name: fmt.Sprintf("task-%d", i),
				Execute: func(context.Context) (int, error) {
					return i * i, nil
				},
			})
		}

		results := async.NewPool[int](4).Execute(context.Background(), tasks)

		require.Len(t, results, 20)
		assert.Equal(t, 49, results["task-7"].Data)
		assert.NoError(t, results["task-7"].Err)
	})

	t.Run("keeps task errors", func(t *testing.T) {
		boom := errors.New("boom")
		results := async.NewPool[string](2).Execute(context.Background(), []async.Task[string]{
			{Name: "ok", Execute: func(context.Context) (string, error) { return "done", nil }},
			{Name: "fail", Execute: func(context.Context) (string, error) { return "", boom }},
		})

		assert.Equal(t, "done", results["ok"].Data)
		assert.ErrorIs(t, results["fail"].Err, boom)
	})

	t.Run("skips queued tasks after cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var ran atomic.Int32

		var tasks []async.Task[int]
		for i := 0; i < 10; i++ {
			tasks = append(tasks, async.Task[int]{
				Name: fmt.Sprintf("task-%d", i),
				Execute: func(context.Context) (int, error) {
					ran.Add(1)
					cancel()
					return 0, nil
				},
			})
		}

		results := async.NewPool[int](1).Execute(ctx, tasks)

		assert.Equal(t, int32(1), ran.Load())
		assert.Len(t, results, 1)
	})
}
