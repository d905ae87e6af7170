// Package pool runs index-addressed tasks with bounded concurrency.
package pool

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Run 对 [0,n) 的每个下标调用 fn，同时最多 width 个在执行，全部结束后返回。
// fn 只应写自己下标对应的槽位；单个任务的 panic 会被转为错误并记录，不会中断其他任务。
// 返回值是所有任务中第一个非 nil 的错误，任务之间不互相取消。
func Run(ctx context.Context, width, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	if width <= 0 {
		width = 1
	}

	var g errgroup.Group
	g.SetLimit(width)
	for i := 0; i < n; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("pool task %d panicked: %v", i, r)
				}
			}()
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

// Map 是 Run 的便捷写法：按下标收集结果，顺序与输入一致
func Map[T, R any](ctx context.Context, width int, in []T, fn func(ctx context.Context, v T) R) []R {
	out := make([]R, len(in))
	_ = Run(ctx, width, len(in), func(ctx context.Context, i int) error {
		out[i] = fn(ctx, in[i])
		return nil
	})
	return out
}
