package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/common"
)

// MemoryStore keeps jobs in process memory. It is the default store when no
// database path is configured; jobs do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Put(_ context.Context, job *Job) error {
	if job == nil || job.ID == "" {
		return common.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, kind constants.DocumentKind, limit int) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if kind != "" && job.Kind != kind {
			continue
		}
		cp := *job
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
