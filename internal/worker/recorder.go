package worker

import (
	"context"
	"errors"

	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	"github.com/azhengyongqin/browser-use-gateway/internal/repository"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

// OutcomeStore 等待结果的持久化（任务历史）
type OutcomeStore interface {
	RecordOutcome(ctx context.Context, u repository.OutcomeUpdate) error
}

// SnapshotStore 终态快照缓存
type SnapshotStore interface {
	PutTerminal(ctx context.Context, snap *model.TaskSnapshot) error
}

// Recorder 把一次等待的结果写入历史和缓存，两者都可以为 nil（未启用）
type Recorder struct {
	history OutcomeStore
	cache   SnapshotStore
}

func NewRecorder(history OutcomeStore, cache SnapshotStore) *Recorder {
	return &Recorder{history: history, cache: cache}
}

// Record 记录结果；写入失败只打日志，不影响调用方的返回
func (r *Recorder) Record(ctx context.Context, taskID string, snap *model.TaskSnapshot, waitErr error) {
	if r == nil {
		return
	}
	log := logger.WithTaskID(taskID)

	if r.cache != nil && waitErr == nil {
		if err := r.cache.PutTerminal(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("写入快照缓存失败")
		}
	}

	if r.history != nil {
		if err := r.history.RecordOutcome(ctx, OutcomeUpdate(taskID, snap, waitErr)); err != nil {
			log.Warn().Err(err).Msg("记录任务历史失败")
		}
	}
}

// OutcomeName 等待结果的分类：completed / timeout / error
func OutcomeName(err error) string {
	switch {
	case err == nil:
		return repository.OutcomeCompleted
	case errors.Is(err, waiter.ErrTimeout):
		return repository.OutcomeTimeout
	default:
		return repository.OutcomeError
	}
}

// OutcomeUpdate 根据等待结果构造历史记录更新。超时时使用 TimeoutError 携带的最后一个快照
func OutcomeUpdate(taskID string, snap *model.TaskSnapshot, waitErr error) repository.OutcomeUpdate {
	u := repository.OutcomeUpdate{
		TaskID:  taskID,
		Outcome: OutcomeName(waitErr),
	}
	if waitErr != nil {
		u.Error = waitErr.Error()
		if last, ok := waiter.LastSnapshot(waitErr); ok {
			snap = last
		}
	}
	if snap != nil {
		u.Status = string(snap.Status)
		u.Output = snap.OutputText()
		u.Snapshot = snap.Raw
		u.Terminal = snap.IsTerminal()
	}
	return u
}
