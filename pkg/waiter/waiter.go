package waiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultTimeout      = 300 * time.Second
)

// ErrTimeout 等待超时（可用 errors.Is 判断）
var ErrTimeout = errors.New("wait for completion timed out")

// TimeoutError 超时错误，携带循环中最后一次成功获取的快照（可能为 nil）
type TimeoutError struct {
	TaskID  string
	Timeout time.Duration
	Last    *model.TaskSnapshot
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s 未在 %s 内完成", e.TaskID, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// FetchFunc 获取任务当前快照；返回的错误会直接中断等待
type FetchFunc func(ctx context.Context, taskID string) (*model.TaskSnapshot, error)

// Observer 每获取到一个快照调用一次（仅用于展示，不影响等待结果）
type Observer func(snapshot *model.TaskSnapshot)

// Options 单次等待的参数
type Options struct {
	PollInterval time.Duration
	Timeout      time.Duration
	Observer     Observer
}

// DefaultOptions 默认轮询间隔 2s，超时 300s
func DefaultOptions() Options {
	return Options{
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
	}
}

// Clock 时间源，测试中可替换
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Waiter 轮询任务直到终态或超时。
// Waiter 本身无状态，可被多个 goroutine 同时使用。
type Waiter struct {
	clock Clock
}

// New 创建使用真实时钟的 Waiter
func New() *Waiter {
	return &Waiter{clock: realClock{}}
}

// NewWithClock 创建使用指定时钟的 Waiter
func NewWithClock(clock Clock) *Waiter {
	if clock == nil {
		clock = realClock{}
	}
	return &Waiter{clock: clock}
}

// Wait 反复调用 fetch，直到：
// - 状态为 finished/failed/stopped：返回该快照
// - fetch 返回错误：立即返回该错误，不重试也不再 sleep
// - 自开始起经过的时间超过 Timeout：返回 *TimeoutError
// - ctx 被取消：在下一次 sleep 时返回 ctx.Err()
//
// Timeout 或 PollInterval 为 0 是合法的，表示只检查一次，未到终态即超时；负值按 0 处理。
func (w *Waiter) Wait(ctx context.Context, taskID string, fetch FetchFunc, opts Options) (*model.TaskSnapshot, error) {
	if fetch == nil {
		return nil, errors.New("fetch func 不能为空")
	}
	poll := max(opts.PollInterval, 0)
	timeout := max(opts.Timeout, 0)

	log := logger.WithTaskID(taskID)
	start := w.clock.Now()

	var last *model.TaskSnapshot
	for polls := 1; ; polls++ {
		// timeout 或 poll 为 0 时只检查一次
		if elapsed := w.clock.Now().Sub(start); elapsed > timeout || ((timeout == 0 || poll == 0) && polls > 1) {
			log.Debug().Dur("elapsed", elapsed).Int("polls", polls-1).Msg("等待任务超时")
			return nil, &TimeoutError{TaskID: taskID, Timeout: timeout, Last: last}
		}

		snapshot, err := fetch(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("fetch task %s: %w", taskID, err)
		}
		last = snapshot

		if opts.Observer != nil {
			opts.Observer(snapshot)
		}

		if snapshot.IsTerminal() {
			log.Debug().Str("status", string(snapshot.Status)).Int("polls", polls).Msg("任务已结束")
			return snapshot, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-w.clock.After(poll):
		}
	}
}

var defaultWaiter = New()

// Wait 使用默认 Waiter 等待任务结束
func Wait(ctx context.Context, taskID string, fetch FetchFunc, opts Options) (*model.TaskSnapshot, error) {
	return defaultWaiter.Wait(ctx, taskID, fetch, opts)
}

// LastSnapshot 从超时错误中取出最后一次快照
func LastSnapshot(err error) (*model.TaskSnapshot, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te.Last, true
	}
	return nil, false
}
