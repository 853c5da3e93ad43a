package waiter

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

// StepTracker 记录已经见过的 step，只把新出现的 step 交给回调。
// 通过 Observer() 挂到 Options 上使用。
type StepTracker struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	onStep func(step json.RawMessage)
}

// NewStepTracker 创建 StepTracker，onStep 对每个新 step 调用一次
func NewStepTracker(onStep func(step json.RawMessage)) *StepTracker {
	return &StepTracker{
		seen:   make(map[string]struct{}),
		onStep: onStep,
	}
}

// Observer 返回可用于 Options.Observer 的回调
func (t *StepTracker) Observer() Observer {
	return func(snapshot *model.TaskSnapshot) {
		if snapshot == nil {
			return
		}
		for _, step := range t.add(snapshot.Steps) {
			if t.onStep != nil {
				t.onStep(step)
			}
		}
	}
}

// Seen 已见过的 step 数量
func (t *StepTracker) Seen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

func (t *StepTracker) add(steps []json.RawMessage) []json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fresh []json.RawMessage
	for _, step := range steps {
		key := stepKey(step)
		if _, ok := t.seen[key]; ok {
			continue
		}
		t.seen[key] = struct{}{}
		fresh = append(fresh, step)
	}
	return fresh
}

// stepKey 以紧凑化后的 JSON 作为 step 的身份
func stepKey(step json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, step); err != nil {
		return string(step)
	}
	return buf.String()
}
