// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-a2a/research-agent/a2a"
)

// DatabaseTaskStore is a GORM implementation of TaskStore.
//
// Mutations are serialized by a store-wide mutex and run in a transaction that locks the
// task row, so concurrent writers in other processes sharing the table also see a single
// writer per task.
type DatabaseTaskStore struct {
	mu  sync.Mutex
	db  *gorm.DB
	ttl time.Duration
}

var _ TaskStore = (*DatabaseTaskStore)(nil)

// DatabaseTaskStoreConfig holds configuration for DatabaseTaskStore.
type DatabaseTaskStoreConfig struct {
	DB *gorm.DB
	// AutoMigrate creates or updates the tasks table on Initialize.
	AutoMigrate bool
	// TTL expires finished tasks after their last update. Zero keeps them forever.
	TTL time.Duration
}

// NewDatabaseTaskStore creates a new DatabaseTaskStore and prepares its schema.
func NewDatabaseTaskStore(ctx context.Context, config DatabaseTaskStoreConfig) (*DatabaseTaskStore, error) {
	if config.DB == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	s := &DatabaseTaskStore{
		db:  config.DB,
		ttl: max(config.TTL, 0),
	}
	if config.AutoMigrate {
		if err := s.db.WithContext(ctx).AutoMigrate(&TaskModel{}); err != nil {
			return nil, NewTaskStoreError("initialize", "", err)
		}
	}
	return s, nil
}

// Upsert implements [TaskStore].
func (s *DatabaseTaskStore) Upsert(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out *a2a.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := lockTask(tx, params.ID)
		switch {
		case errors.Is(err, ErrTaskNotFound):
			t := &a2a.Task{
				ID:        params.ID,
				SessionID: params.SessionID,
				Status:    a2a.NewTaskStatus(a2a.TaskStateSubmitted, nil),
				History:   []a2a.Message{params.Message},
				Metadata:  params.Metadata,
			}
			m, err := NewTaskModelFromTask(t)
			if err != nil {
				return err
			}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			out = t
			return nil

		case err != nil:
			return err
		}

		model.Status.Data = a2a.NewTaskStatus(a2a.TaskStateSubmitted, nil)
		model.State = string(a2a.TaskStateSubmitted)
		model.History.Data = append(model.History.Data, cloneMessage(params.Message))
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		out, err = model.ToTask()
		return err
	})
	if err != nil {
		return nil, NewTaskStoreError("upsert", params.ID, err)
	}
	return cloneTask(out), nil
}

// Update implements [TaskStore].
func (s *DatabaseTaskStore) Update(ctx context.Context, taskID string, status a2a.TaskStatus, artifacts []a2a.Artifact) (*a2a.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now().UTC()
	}

	var out *a2a.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := lockTask(tx, taskID)
		if err != nil {
			return err
		}

		model.Status.Data = status
		model.State = string(status.State)
		if status.Message != nil {
			model.History.Data = append(model.History.Data, cloneMessage(*status.Message))
		}
		for _, a := range artifacts {
			model.Artifacts.Data = append(model.Artifacts.Data, cloneArtifact(a))
		}
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		out, err = model.ToTask()
		return err
	})
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return nil, TaskNotFoundError{TaskID: taskID}
	case err != nil:
		return nil, NewTaskStoreError("update", taskID, err)
	}
	return out, nil
}

// Get implements [TaskStore].
func (s *DatabaseTaskStore) Get(ctx context.Context, taskID string, historyLength *int) (*a2a.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	var model TaskModel
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, TaskNotFoundError{TaskID: taskID}
		}
		return nil, NewTaskStoreError("get", taskID, err)
	}

	t, err := model.ToTask()
	if err != nil {
		return nil, NewTaskStoreError("get", taskID, err)
	}
	return WithHistory(t, historyLength), nil
}

// Len implements [TaskStore].
func (s *DatabaseTaskStore) Len(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&TaskModel{}).Count(&n).Error; err != nil {
		return 0, NewTaskStoreError("count", "", err)
	}
	return int(n), nil
}

// Sweep deletes finished tasks whose last update is older than the TTL.
func (s *DatabaseTaskStore) Sweep(ctx context.Context) (int64, error) {
	if s.ttl == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	terminal := []string{string(a2a.TaskStateCompleted), string(a2a.TaskStateCanceled), string(a2a.TaskStateFailed)}
	res := s.db.WithContext(ctx).
		Where("state IN ? AND updated_at < ?", terminal, cutoff).
		Delete(&TaskModel{})
	if res.Error != nil {
		return 0, NewTaskStoreError("sweep", "", res.Error)
	}
	return res.RowsAffected, nil
}

// Close implements [TaskStore].
func (s *DatabaseTaskStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// lockTask loads the task row for update.
func lockTask(tx *gorm.DB, taskID string) (*TaskModel, error) {
	var model TaskModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", taskID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, TaskNotFoundError{TaskID: taskID}
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}
