// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"gorm.io/gorm"

	"github.com/go-a2a/research-agent/a2a"
)

// JSONColumn stores a value of type T as a JSON document in a database column.
type JSONColumn[T any] struct {
	Data T
}

// Value implements the driver.Valuer interface for database storage.
func (c JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database retrieval.
func (c *JSONColumn[T]) Scan(value any) error {
	var zero T
	var b []byte
	switch v := value.(type) {
	case nil:
		c.Data = zero
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONColumn[%T]", value, zero)
	}

	var data T
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("cannot unmarshal JSONColumn[%T]: %w", zero, err)
	}
	c.Data = data
	return nil
}

// TaskModel is the database row of a task.
type TaskModel struct {
	ID        string                     `gorm:"primaryKey;size:64"`
	SessionID string                     `gorm:"size:64;index"`
	State     string                     `gorm:"size:16;index;not null"`
	Status    JSONColumn[a2a.TaskStatus] `gorm:"type:json"`
	Artifacts JSONColumn[[]a2a.Artifact] `gorm:"type:json"`
	History   JSONColumn[[]a2a.Message]  `gorm:"type:json"`
	Metadata  JSONColumn[map[string]any] `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for the TaskModel.
func (TaskModel) TableName() string {
	return "tasks"
}

// Validate ensures the TaskModel is in a valid state.
func (m *TaskModel) Validate() error {
	if m.ID == "" {
		return errors.New("task ID cannot be empty")
	}
	if m.Status.Data.State == "" {
		return errors.New("task state cannot be empty")
	}
	if m.State != string(m.Status.Data.State) {
		return fmt.Errorf("state column %q does not match status state %q", m.State, m.Status.Data.State)
	}
	return nil
}

// NewTaskModelFromTask converts task into a database row.
func NewTaskModelFromTask(task *a2a.Task) (*TaskModel, error) {
	if task == nil {
		return nil, errors.New("task cannot be nil")
	}

	t := cloneTask(task)
	m := &TaskModel{
		ID:        t.ID,
		SessionID: t.SessionID,
		State:     string(t.Status.State),
		Status:    JSONColumn[a2a.TaskStatus]{Data: t.Status},
		Artifacts: JSONColumn[[]a2a.Artifact]{Data: t.Artifacts},
		History:   JSONColumn[[]a2a.Message]{Data: t.History},
		Metadata:  JSONColumn[map[string]any]{Data: t.Metadata},
	}
	if err := m.Validate(); err != nil {
		return nil, NewTaskValidationError(task.ID, err)
	}
	return m, nil
}

// ToTask converts the row back to an A2A task.
func (m *TaskModel) ToTask() (*a2a.Task, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("task model is invalid: %w", err)
	}

	t := &a2a.Task{
		ID:        m.ID,
		SessionID: m.SessionID,
		Status:    m.Status.Data,
		Artifacts: m.Artifacts.Data,
		History:   m.History.Data,
		Metadata:  m.Metadata.Data,
	}
	if len(t.Artifacts) == 0 {
		t.Artifacts = nil
	}
	if len(t.History) == 0 {
		t.History = nil
	}
	if len(t.Metadata) == 0 {
		t.Metadata = nil
	}
	return t, nil
}

// BeforeCreate is a GORM hook called before creating a record.
func (m *TaskModel) BeforeCreate(tx *gorm.DB) error {
	return m.Validate()
}

// BeforeUpdate is a GORM hook called before updating a record.
func (m *TaskModel) BeforeUpdate(tx *gorm.DB) error {
	return m.Validate()
}
