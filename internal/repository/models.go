package repository

import (
	"encoding/json"
	"time"
)

// BrowserTaskModel GORM 模型 - 对应 browser_task 表（仅用于建表迁移）
type BrowserTaskModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement;column:id"`
	TaskID       string          `gorm:"column:task_id;uniqueIndex;type:text;not null"`
	Instructions *string         `gorm:"column:instructions;type:text"`
	Status       string          `gorm:"column:status;type:text;not null;default:'';index:idx_browser_task_status_created_at"`
	Outcome      string          `gorm:"column:outcome;type:text;not null;default:'pending';index:idx_browser_task_outcome_created_at"`
	Output       *string         `gorm:"column:output;type:text"`
	Error        *string         `gorm:"column:error;type:text"`
	Snapshot     json.RawMessage `gorm:"column:snapshot;type:jsonb"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime;default:now();index:idx_browser_task_status_created_at,sort:desc;index:idx_browser_task_outcome_created_at,sort:desc"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime;default:now()"`
	FinishedAt   *time.Time      `gorm:"column:finished_at"`
}

// TableName 指定表名
func (BrowserTaskModel) TableName() string { return "browser_task" }

// ToRecord 转换为 TaskRecord 实体
func (m *BrowserTaskModel) ToRecord() TaskRecord {
	t := TaskRecord{
		TaskID:     m.TaskID,
		Status:     m.Status,
		Outcome:    m.Outcome,
		Snapshot:   m.Snapshot,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		FinishedAt: m.FinishedAt,
	}
	if m.Instructions != nil {
		t.Instructions = *m.Instructions
	}
	if m.Output != nil {
		t.Output = *m.Output
	}
	if m.Error != nil {
		t.Error = *m.Error
	}
	return t
}

// Models 需要自动迁移的模型
func Models() []any {
	return []any{&BrowserTaskModel{}}
}
