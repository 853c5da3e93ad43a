package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/browser-use-gateway/internal/browseruse"
	"github.com/azhengyongqin/browser-use-gateway/internal/cache"
	asynqx "github.com/azhengyongqin/browser-use-gateway/internal/queue"
	"github.com/azhengyongqin/browser-use-gateway/internal/repository"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUpstream 模拟 Browser Use API
type fakeUpstream struct {
	mu       sync.Mutex
	statuses []string // GET /task/{id} 依次返回的状态，最后一个重复
	getCalls int
	failGet  int
	runBody  map[string]any
	lastReq  string
}

func (u *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastReq = r.Method + " " + r.URL.RequestURI()
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")

	switch {
	case r.Method == http.MethodPost && path == "/run-task":
		_ = json.NewDecoder(r.Body).Decode(&u.runBody)
		_, _ = io.WriteString(w, `{"id":"task-1"}`)
	case r.Method == http.MethodGet && path == "/tasks":
		_, _ = io.WriteString(w, `{"tasks":[],"total_count":0}`)
	case r.Method == http.MethodGet && path == "/task/task-1":
		if u.failGet != 0 {
			w.WriteHeader(u.failGet)
			_, _ = io.WriteString(w, `{"detail":"Task not found"}`)
			return
		}
		status := "running"
		if len(u.statuses) > 0 {
			status = u.statuses[min(u.getCalls, len(u.statuses)-1)]
		}
		u.getCalls++
		_, _ = fmt.Fprintf(w, `{"id":"task-1","status":%q,"output":"X","steps":[],"live_url":"https://live"}`, status)
	case r.Method == http.MethodPut && path == "/task/task-1/stop":
		_, _ = io.WriteString(w, `{"stopped":true}`)
	case r.Method == http.MethodGet && path == "/task/task-1/screenshots":
		_, _ = io.WriteString(w, `{"screenshots":["a.png"]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (u *fakeUpstream) GetCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.getCalls
}

type memCache struct {
	mu    sync.Mutex
	items map[string]*model.TaskSnapshot
}

func (m *memCache) GetTerminal(_ context.Context, taskID string) (*model.TaskSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.items[taskID]; ok {
		return s, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memCache) PutTerminal(_ context.Context, s *model.TaskSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.IsTerminal() {
		m.items[s.ID] = s
	}
	return nil
}

type memHistory struct {
	mu       sync.Mutex
	created  map[string]string
	outcomes []repository.OutcomeUpdate
}

func (m *memHistory) RecordCreated(_ context.Context, taskID, instructions string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[taskID] = instructions
	return nil
}

func (m *memHistory) RecordOutcome(_ context.Context, u repository.OutcomeUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, u)
	return nil
}

func (m *memHistory) GetTask(_ context.Context, taskID string) (*repository.TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ins, ok := m.created[taskID]; ok {
		return &repository.TaskRecord{TaskID: taskID, Instructions: ins, Outcome: repository.OutcomePending}, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memHistory) ListTasks(_ context.Context, _ repository.ListTasksFilter) ([]repository.TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repository.TaskRecord{}
	for id, ins := range m.created {
		out = append(out, repository.TaskRecord{TaskID: id, Instructions: ins})
	}
	return out, nil
}

func (m *memHistory) CountTasks(_ context.Context, _ repository.ListTasksFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created), nil
}

type fakeWatcher struct {
	seen map[string]bool
	last asynqx.WatchPayload
}

func (f *fakeWatcher) EnqueueWatch(_ context.Context, p asynqx.WatchPayload) (*asynq.TaskInfo, error) {
	if f.seen[p.TaskID] {
		return nil, asynqx.ErrAlreadyWatching
	}
	f.seen[p.TaskID] = true
	f.last = p
	return &asynq.TaskInfo{ID: asynqx.WatchTaskID(p.TaskID), Queue: asynqx.QueueWatch}, nil
}

type fakeInspector struct {
	watcher *fakeWatcher
	states  map[string]asynq.TaskState
	deleted []string
}

func (f *fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return nil, fmt.Errorf("asynq: %w", asynq.ErrQueueNotFound)
}

func (f *fakeInspector) GetTaskInfo(_, id string) (*asynq.TaskInfo, error) {
	if st, ok := f.states[id]; ok {
		return &asynq.TaskInfo{ID: id, Queue: asynqx.QueueWatch, State: st}, nil
	}
	return nil, fmt.Errorf("asynq: %w", asynq.ErrTaskNotFound)
}

func (f *fakeInspector) DeleteTask(_, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.states, id)
	delete(f.watcher.seen, strings.TrimPrefix(id, "watch:"))
	return nil
}

type testEnv struct {
	upstream  *fakeUpstream
	cache     *memCache
	history   *memHistory
	watcher   *fakeWatcher
	inspector *fakeInspector
	handler   http.Handler
}

func newEnv(t *testing.T, full bool) *testEnv {
	t.Helper()
	env := &testEnv{upstream: &fakeUpstream{}}
	srv := httptest.NewServer(env.upstream)
	t.Cleanup(srv.Close)

	deps := Deps{
		Client:       browseruse.NewClient(browseruse.Config{APIKey: "k", BaseURL: srv.URL + "/api/v1", Timeout: time.Second}),
		WaitDefaults: waiter.Options{PollInterval: time.Millisecond, Timeout: 5 * time.Second},
	}
	if full {
		env.cache = &memCache{items: map[string]*model.TaskSnapshot{}}
		env.history = &memHistory{created: map[string]string{}}
		env.watcher = &fakeWatcher{seen: map[string]bool{}}
		deps.Cache = env.cache
		deps.History = env.history
		deps.Watcher = env.watcher
		env.inspector = &fakeInspector{
			watcher: env.watcher,
			states:  map[string]asynq.TaskState{asynqx.WatchTaskID("task-1"): asynq.TaskStateActive},
		}
		deps.Inspector = env.inspector
	}
	env.handler = NewRouter(deps)
	return env
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestHealth(t *testing.T) {
	env := newEnv(t, false)

	w := env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.Equal(t, "healthy", m["status"])
	assert.Equal(t, "browser-use-api", m["service"])

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/metrics", "").Code)
}

func TestRunTask_Validation(t *testing.T) {
	env := newEnv(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"null", "null"},
		{"missing task", `{"llm_model":"gpt-4o"}`},
		{"task not string", `{"task":1}`},
		{"blank task", `{"task":"  "}`},
		{"bad wait flag", `{"task":"x","wait_for_completion":"yes"}`},
		{"bad timeout", `{"task":"x","timeout":"10"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/v1/run-task", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestRunTask_Created(t *testing.T) {
	env := newEnv(t, true)

	w := env.do(http.MethodPost, "/api/v1/run-task", `{"task":"search openai","llm_model":"gpt-4o","wait_for_completion":false,"timeout":30}`)
	require.Equal(t, http.StatusOK, w.Code)

	m := decode(t, w)
	assert.Equal(t, "task-1", m["task_id"])
	assert.Equal(t, "created", m["status"])
	assert.NotEmpty(t, m["message"])

	// 网关参数不转发
	assert.Equal(t, map[string]any{"task": "search openai", "llm_model": "gpt-4o"}, env.upstream.runBody)
	assert.Equal(t, "search openai", env.history.created["task-1"])
	assert.Equal(t, 0, env.upstream.GetCalls())
}

func TestRunTask_WaitCompleted(t *testing.T) {
	env := newEnv(t, true)
	env.upstream.statuses = []string{"running", "running", "finished"}

	w := env.do(http.MethodPost, "/api/v1/run-task", `{"task":"x","wait_for_completion":true,"timeout":10}`)
	require.Equal(t, http.StatusOK, w.Code)

	m := decode(t, w)
	assert.Equal(t, "completed", m["status"])
	result := m["result"].(map[string]any)
	assert.Equal(t, "finished", result["status"])
	assert.Equal(t, "X", result["output"])
	assert.Equal(t, "https://live", result["live_url"])
	assert.Equal(t, 3, env.upstream.GetCalls())

	require.Len(t, env.history.outcomes, 1)
	assert.Equal(t, repository.OutcomeCompleted, env.history.outcomes[0].Outcome)
	assert.Contains(t, env.cache.items, "task-1")
}

func TestWait_Timeout(t *testing.T) {
	env := newEnv(t, true)

	w := env.do(http.MethodGet, "/api/v1/task/task-1/wait?timeout=0&poll_interval=0", "")
	require.Equal(t, http.StatusRequestTimeout, w.Code)

	m := decode(t, w)
	assert.Equal(t, "task-1", m["task_id"])
	assert.Equal(t, "timeout", m["status"])
	assert.NotEmpty(t, m["error"])
	assert.Equal(t, "running", m["partial_result"].(map[string]any)["status"])

	// 超时返回循环中的最后一个快照，不会额外再请求一次
	assert.Equal(t, 1, env.upstream.GetCalls())

	require.Len(t, env.history.outcomes, 1)
	assert.Equal(t, repository.OutcomeTimeout, env.history.outcomes[0].Outcome)
	assert.Empty(t, env.cache.items)
}

func TestWait_ZeroPollIntervalChecksOnce(t *testing.T) {
	env := newEnv(t, true)

	w := env.do(http.MethodGet, "/api/v1/task/task-1/wait?poll_interval=0&timeout=5", "")
	require.Equal(t, http.StatusRequestTimeout, w.Code)

	m := decode(t, w)
	assert.Equal(t, "timeout", m["status"])
	assert.Equal(t, "running", m["partial_result"].(map[string]any)["status"])
	assert.Equal(t, 1, env.upstream.GetCalls())
}

func TestWait_OutOfRangeDurations(t *testing.T) {
	env := newEnv(t, true)

	for _, target := range []string{
		"/api/v1/task/task-1/wait?timeout=9223372036854775807",
		"/api/v1/task/task-1/wait?timeout=99999999999999999999",
		"/api/v1/task/task-1/wait?poll_interval=-9223372036854775807",
	} {
		w := env.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, decode(t, w)["error"], "超出范围")
	}

	w := env.do(http.MethodPost, "/api/v1/run-task", `{"task":"x","wait_for_completion":true,"timeout":1e300}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, env.upstream.runBody)
	assert.Equal(t, 0, env.upstream.GetCalls())
}

func TestWait_ServedFromCache(t *testing.T) {
	env := newEnv(t, true)
	env.upstream.statuses = []string{"stopped"}

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/task/task-1", "").Code)
	require.Equal(t, 1, env.upstream.GetCalls())

	w := env.do(http.MethodGet, "/api/v1/task/task-1/wait", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stopped", decode(t, w)["result"].(map[string]any)["status"])

	w = env.do(http.MethodGet, "/api/v1/task/task-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://live", decode(t, w)["live_url"])
	assert.Equal(t, 1, env.upstream.GetCalls())
}

func TestUpstreamErrorIs500(t *testing.T) {
	env := newEnv(t, false)
	env.upstream.failGet = http.StatusNotFound

	for _, target := range []string{"/api/v1/task/task-1", "/api/v1/task/task-1/wait"} {
		w := env.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code, target)
		assert.Contains(t, decode(t, w)["error"], "Browser Use API 错误")
	}
}

func TestPassthrough(t *testing.T) {
	env := newEnv(t, false)

	w := env.do(http.MethodPut, "/api/v1/task/task-1/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stopped":true}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/task/task-1/screenshots", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"screenshots":["a.png"]}`, w.Body.String())

	// 上游没有的资源
	w = env.do(http.MethodGet, "/api/v1/task/task-1/gif", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListTasks_QueryDefaults(t *testing.T) {
	env := newEnv(t, false)

	tests := []struct {
		target string
		want   string
	}{
		{"/api/v1/tasks", "GET /api/v1/tasks?limit=10&offset=0"},
		{"/api/v1/tasks?limit=5&offset=20", "GET /api/v1/tasks?limit=5&offset=20"},
		{"/api/v1/tasks?limit=abc", "GET /api/v1/tasks?limit=10&offset=0"},
	}
	for _, tt := range tests {
		w := env.do(http.MethodGet, tt.target, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tt.want, env.upstream.lastReq)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	env := newEnv(t, false)

	w := env.do(http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "接口不存在", decode(t, w)["error"])

	w = env.do(http.MethodGet, "/api/v1/task/task-1/stop", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "方法不允许", decode(t, w)["error"])
}

func TestInvalidTaskID(t *testing.T) {
	env := newEnv(t, false)

	w := env.do(http.MethodGet, "/api/v1/task/bad.id/status", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.upstream.GetCalls())
}

func TestWatch(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newEnv(t, false)
		assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodPost, "/api/v1/task/task-1/watch", "").Code)
		assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/api/v1/task/task-1/watch", "").Code)
		assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/api/v1/watch/stats", "").Code)
	})

	t.Run("enqueue", func(t *testing.T) {
		env := newEnv(t, true)

		w := env.do(http.MethodPost, "/api/v1/task/task-1/watch?timeout=60&poll_interval=3", "")
		require.Equal(t, http.StatusAccepted, w.Code)
		m := decode(t, w)
		assert.Equal(t, "watching", m["status"])
		assert.Equal(t, "watch:task-1", m["asynq_task_id"])
		assert.Equal(t, asynqx.WatchPayload{TaskID: "task-1", PollIntervalSeconds: 3, TimeoutSeconds: 60}, env.watcher.last)

		w = env.do(http.MethodPost, "/api/v1/task/task-1/watch", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, env.inspector.deleted)
	})

	t.Run("rewatch after completion", func(t *testing.T) {
		env := newEnv(t, true)
		env.watcher.seen["task-2"] = true
		env.inspector.states[asynqx.WatchTaskID("task-2")] = asynq.TaskStateCompleted

		w := env.do(http.MethodPost, "/api/v1/task/task-2/watch", "")
		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []string{"watch:task-2"}, env.inspector.deleted)
		assert.Equal(t, "task-2", env.watcher.last.TaskID)
	})

	t.Run("out of range durations", func(t *testing.T) {
		env := newEnv(t, true)

		w := env.do(http.MethodPost, "/api/v1/task/task-1/watch?timeout=9223372036854775807", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, env.watcher.seen)
	})

	t.Run("inspect", func(t *testing.T) {
		env := newEnv(t, true)

		w := env.do(http.MethodGet, "/api/v1/task/task-1/watch", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "active", decode(t, w)["state"])

		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/task/other/watch", "").Code)

		w = env.do(http.MethodGet, "/api/v1/watch/stats", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "watch", decode(t, w)["queue"])
	})
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newEnv(t, false)
		assert.Equal(t, http.StatusNotImplemented, env.do(http.MethodGet, "/api/v1/history", "").Code)
		assert.Equal(t, http.StatusNotImplemented, env.do(http.MethodGet, "/api/v1/history/task-1", "").Code)
	})

	t.Run("enabled", func(t *testing.T) {
		env := newEnv(t, true)
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/run-task", `{"task":"x"}`).Code)

		w := env.do(http.MethodGet, "/api/v1/history?limit=5", "")
		require.Equal(t, http.StatusOK, w.Code)
		m := decode(t, w)
		assert.EqualValues(t, 1, m["total"])

		w = env.do(http.MethodGet, "/api/v1/history/task-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "x", decode(t, w)["instructions"])

		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/history/missing", "").Code)
		assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/history?limit=x", "").Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	env := newEnv(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/run-task", nil)
	req.Header.Set("Origin", "http://frontend.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
