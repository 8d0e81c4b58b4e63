// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/go-a2a/research-agent/a2a"
)

type record struct {
	task      *a2a.Task
	updatedAt time.Time
}

// InMemoryTaskStore is an in-memory implementation of TaskStore.
// Task data is lost when the server process stops.
//
// All reads and writes are serialized by one store-wide mutex; there are no per-task locks.
type InMemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[string]*record

	// maxTasks bounds the number of records. Zero means unbounded.
	maxTasks int
	// ttl is how long a finished task is kept after its last update. Zero keeps it forever.
	ttl time.Duration

	now func() time.Time
}

var _ TaskStore = (*InMemoryTaskStore)(nil)

// InMemoryOption configures an [InMemoryTaskStore].
type InMemoryOption func(*InMemoryTaskStore)

// WithMaxTasks bounds the number of stored tasks. When the store is full, the finished
// task updated least recently is evicted to admit a new one.
func WithMaxTasks(n int) InMemoryOption {
	return func(s *InMemoryTaskStore) {
		s.maxTasks = max(n, 0)
	}
}

// WithTTL expires finished tasks ttl after their last update.
func WithTTL(ttl time.Duration) InMemoryOption {
	return func(s *InMemoryTaskStore) {
		s.ttl = max(ttl, 0)
	}
}

// NewInMemoryTaskStore creates a new InMemoryTaskStore.
func NewInMemoryTaskStore(opts ...InMemoryOption) *InMemoryTaskStore {
	s := &InMemoryTaskStore{
		tasks: make(map[string]*record),
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Upsert implements [TaskStore].
func (s *InMemoryTaskStore) Upsert(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if rec, ok := s.tasks[params.ID]; ok {
		// a re-sent task is running again
		rec.task.Status = a2a.TaskStatus{State: a2a.TaskStateSubmitted, Timestamp: now.UTC()}
		rec.task.History = append(rec.task.History, cloneMessage(params.Message))
		rec.updatedAt = now
		return cloneTask(rec.task), nil
	}

	if s.maxTasks > 0 && len(s.tasks) >= s.maxTasks {
		if !s.evictLocked() {
			return nil, NewTaskStoreError("upsert", params.ID, ErrStoreFull)
		}
	}

	t := &a2a.Task{
		ID:        params.ID,
		SessionID: params.SessionID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateSubmitted, Timestamp: now.UTC()},
		History:   []a2a.Message{cloneMessage(params.Message)},
		Metadata:  maps.Clone(params.Metadata),
	}
	s.tasks[params.ID] = &record{task: t, updatedAt: now}

	return cloneTask(t), nil
}

// Update implements [TaskStore].
func (s *InMemoryTaskStore) Update(ctx context.Context, taskID string, status a2a.TaskStatus, artifacts []a2a.Artifact) (*a2a.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.tasks[taskID]
	if !ok || s.expiredLocked(rec, now) {
		return nil, TaskNotFoundError{TaskID: taskID}
	}

	if status.Timestamp.IsZero() {
		status.Timestamp = now.UTC()
	}
	status.Message = cloneMessagePtr(status.Message)

	t := rec.task
	t.Status = status
	if status.Message != nil {
		t.History = append(t.History, cloneMessage(*status.Message))
	}
	if artifacts != nil {
		if t.Artifacts == nil {
			t.Artifacts = make([]a2a.Artifact, 0, len(artifacts))
		}
		for _, a := range artifacts {
			t.Artifacts = append(t.Artifacts, cloneArtifact(a))
		}
	}
	rec.updatedAt = now

	return cloneTask(t), nil
}

// Get implements [TaskStore].
func (s *InMemoryTaskStore) Get(ctx context.Context, taskID string, historyLength *int) (*a2a.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tasks[taskID]
	if !ok || s.expiredLocked(rec, s.now()) {
		return nil, TaskNotFoundError{TaskID: taskID}
	}
	return WithHistory(cloneTask(rec.task), historyLength), nil
}

// Len implements [TaskStore].
func (s *InMemoryTaskStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks), nil
}

// Close implements [TaskStore].
func (s *InMemoryTaskStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]*record)
	return nil
}

// Sweep removes expired tasks and reports how many were removed.
func (s *InMemoryTaskStore) Sweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(s.now())
}

// Run sweeps expired tasks every interval until ctx is done.
func (s *InMemoryTaskStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl == 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *InMemoryTaskStore) expiredLocked(rec *record, now time.Time) bool {
	return s.ttl > 0 && rec.task.Status.State.IsTerminal() && now.Sub(rec.updatedAt) >= s.ttl
}

func (s *InMemoryTaskStore) sweepLocked(now time.Time) int {
	if s.ttl == 0 {
		return 0
	}
	n := 0
	for id, rec := range s.tasks {
		if s.expiredLocked(rec, now) {
			delete(s.tasks, id)
			n++
		}
	}
	return n
}

// evictLocked drops the finished task updated least recently. Tasks still in flight are never evicted.
func (s *InMemoryTaskStore) evictLocked() bool {
	var (
		victim string
		oldest time.Time
	)
	for id, rec := range s.tasks {
		if !rec.task.Status.State.IsTerminal() {
			continue
		}
		if victim == "" || rec.updatedAt.Before(oldest) {
			victim, oldest = id, rec.updatedAt
		}
	}
	if victim == "" {
		return false
	}
	delete(s.tasks, victim)
	return true
}
