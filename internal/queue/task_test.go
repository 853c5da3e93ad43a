package asynqx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTask_Roundtrip(t *testing.T) {
	p := WatchPayload{TaskID: "t-1", PollIntervalSeconds: 2, TimeoutSeconds: 300}

	task, err := NewWatchTask(p)
	require.NoError(t, err)
	assert.Equal(t, TypeWatchTask, task.Type())

	got, err := ParseWatchPayload(task)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 2*time.Second, got.PollInterval())
	assert.Equal(t, 300*time.Second, got.Timeout())
}

func TestWatchTask_RequiresTaskID(t *testing.T) {
	_, err := NewWatchTask(WatchPayload{})
	assert.Error(t, err)

	_, err = ParseWatchPayload(asynq.NewTask(TypeWatchTask, []byte(`{}`)))
	assert.Error(t, err)

	_, err = ParseWatchPayload(asynq.NewTask(TypeWatchTask, []byte(`not json`)))
	assert.Error(t, err)
}

func TestWatchOptions(t *testing.T) {
	assert.Len(t, WatchOptions(WatchPayload{TaskID: "t"}), 4)
	assert.Len(t, WatchOptions(WatchPayload{TaskID: "t", TimeoutSeconds: 10}), 5)
}

type fakeEnqueuer struct {
	err   error
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "watch:t-1", Queue: QueueWatch}, nil
}

func TestClient_EnqueueWatch(t *testing.T) {
	enq := &fakeEnqueuer{}
	c := NewClientWithEnqueuer(enq)

	info, err := c.EnqueueWatch(context.Background(), WatchPayload{TaskID: "t-1", TimeoutSeconds: 5})
	require.NoError(t, err)
	assert.Equal(t, "watch:t-1", info.ID)
	assert.Len(t, enq.tasks, 1)
}

func TestClient_EnqueueWatchConflict(t *testing.T) {
	c := NewClientWithEnqueuer(&fakeEnqueuer{err: asynq.ErrTaskIDConflict})

	_, err := c.EnqueueWatch(context.Background(), WatchPayload{TaskID: "t-1"})
	assert.ErrorIs(t, err, ErrAlreadyWatching)

	c = NewClientWithEnqueuer(&fakeEnqueuer{err: errors.New("redis down")})
	_, err = c.EnqueueWatch(context.Background(), WatchPayload{TaskID: "t-1"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyWatching)
}

func TestWatchTaskID(t *testing.T) {
	assert.Equal(t, "watch:abc", WatchTaskID("abc"))

	_, err := NewInspector("::bad")
	assert.Error(t, err)
}
