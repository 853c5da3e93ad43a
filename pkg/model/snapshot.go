package model

import (
	"bytes"
	"encoding/json"
)

// TaskSnapshot 某一时刻上游任务状态的只读投影。
// 除 status 外的字段（output、steps、metadata ...）原样透传，不做解释；
// 序列化时优先输出收到的原始 JSON。
type TaskSnapshot struct {
	ID     string            `json:"id"`
	Status TaskStatus        `json:"status"`
	Output json.RawMessage   `json:"output,omitempty"`
	Steps  []json.RawMessage `json:"steps,omitempty"`

	// Raw 上游返回的原始文档
	Raw json.RawMessage `json:"-"`
}

type snapshotAlias TaskSnapshot

func (s *TaskSnapshot) UnmarshalJSON(data []byte) error {
	var a snapshotAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = TaskSnapshot(a)
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (s TaskSnapshot) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(snapshotAlias(s))
}

// IsTerminal 快照是否处于终态
func (s *TaskSnapshot) IsTerminal() bool {
	return s != nil && s.Status.IsTerminal()
}

// OutputText 返回 output 的文本形式：JSON 字符串会被解码，其它类型原样返回
func (s *TaskSnapshot) OutputText() string {
	if s == nil || len(s.Output) == 0 || bytes.Equal(s.Output, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(s.Output, &text); err == nil {
		return text
	}
	return string(s.Output)
}
