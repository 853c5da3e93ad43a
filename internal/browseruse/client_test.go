package browseruse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "bu_test", BaseURL: srv.URL + "/api/v1/", Timeout: time.Second})
}

func TestClient_RunTask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/run-task", r.URL.Path)
		assert.Equal(t, "Bearer bu_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "search openai", body["task"])
		assert.Equal(t, "gpt-4o", body["llm_model"])

		_, _ = io.WriteString(w, `{"id":"task-123","live_url":"https://live"}`)
	})

	res, err := c.RunTask(context.Background(), map[string]any{"task": "search openai", "llm_model": "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "task-123", res.ID)
	assert.JSONEq(t, `{"id":"task-123","live_url":"https://live"}`, string(res.Raw))
}

func TestClient_RunTaskMissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := c.RunTask(context.Background(), map[string]any{"task": "x"})
	require.Error(t, err)
	assert.False(t, IsTransportError(err))
}

func TestClient_GetTask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/task/task-1", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"task-1","status":"finished","output":"done","steps":[{"n":1}],"browser_data":null}`)
	})

	snap, err := c.GetTask(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusFinished, snap.Status)
	assert.Equal(t, "done", snap.OutputText())
	assert.Contains(t, string(snap.Raw), "browser_data")
}

func TestClient_Passthrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		call   func(c *Client) (json.RawMessage, error)
	}{
		{"status", http.MethodGet, "/api/v1/task/t1/status", func(c *Client) (json.RawMessage, error) {
			return c.GetTaskStatus(context.Background(), "t1")
		}},
		{"stop", http.MethodPut, "/api/v1/task/t1/stop", func(c *Client) (json.RawMessage, error) {
			return c.StopTask(context.Background(), "t1")
		}},
		{"pause", http.MethodPut, "/api/v1/task/t1/pause", func(c *Client) (json.RawMessage, error) {
			return c.PauseTask(context.Background(), "t1")
		}},
		{"resume", http.MethodPut, "/api/v1/task/t1/resume", func(c *Client) (json.RawMessage, error) {
			return c.ResumeTask(context.Background(), "t1")
		}},
		{"media", http.MethodGet, "/api/v1/task/t1/media", func(c *Client) (json.RawMessage, error) {
			return c.GetTaskMedia(context.Background(), "t1")
		}},
		{"screenshots", http.MethodGet, "/api/v1/task/t1/screenshots", func(c *Client) (json.RawMessage, error) {
			return c.GetTaskScreenshots(context.Background(), "t1")
		}},
		{"gif", http.MethodGet, "/api/v1/task/t1/gif", func(c *Client) (json.RawMessage, error) {
			return c.GetTaskGIF(context.Background(), "t1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				_, _ = io.WriteString(w, `{"ok":true}`)
			})

			raw, err := tt.call(c)
			require.NoError(t, err)
			assert.JSONEq(t, `{"ok":true}`, string(raw))
		})
	}
}

func TestClient_ListTasksQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"tasks":[]}`)
	})

	raw, err := c.ListTasks(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[]}`, string(raw))
}

func TestClient_EmptyBodyIsNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	raw, err := c.StopTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestClient_Non2xxIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Task not found"}`)
	})

	_, err := c.GetTask(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Contains(t, err.Error(), "Task not found")
}

func TestClient_NetworkErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: baseURL, Timeout: time.Second})
	_, err := c.GetTask(context.Background(), "t1")

	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestReadAllWithLimit(t *testing.T) {
	data, err := readAllWithLimit(strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	_, err = readAllWithLimit(strings.NewReader("abcd"), 3)
	assert.ErrorAs(t, err, &ResponseTooLargeError{})
}
