package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		valid    bool
		terminal bool
	}{
		{TaskStatusCreated, true, false},
		{TaskStatusRunning, true, false},
		{TaskStatusPaused, true, false},
		{TaskStatusFinished, true, true},
		{TaskStatusFailed, true, true},
		{TaskStatusStopped, true, true},
		{"unknown", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestTaskSnapshot_PassthroughRaw(t *testing.T) {
	doc := `{"id":"t-1","status":"finished","output":"X","steps":[{"step":1}],"live_url":"https://x","metadata":{"k":"v"}}`

	var s TaskSnapshot
	require.NoError(t, json.Unmarshal([]byte(doc), &s))

	assert.Equal(t, "t-1", s.ID)
	assert.Equal(t, TaskStatusFinished, s.Status)
	assert.Len(t, s.Steps, 1)
	assert.Equal(t, "X", s.OutputText())
	assert.True(t, s.IsTerminal())

	// 未知字段原样透传
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))
}

func TestTaskSnapshot_OutputText(t *testing.T) {
	assert.Equal(t, "", (*TaskSnapshot)(nil).OutputText())
	assert.Equal(t, "", (&TaskSnapshot{Output: json.RawMessage("null")}).OutputText())
	assert.Equal(t, `{"a":1}`, (&TaskSnapshot{Output: json.RawMessage(`{"a":1}`)}).OutputText())
}

func TestTaskSnapshot_MarshalWithoutRaw(t *testing.T) {
	s := TaskSnapshot{ID: "t-2", Status: TaskStatusRunning}
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t-2","status":"running"}`, string(out))
}
