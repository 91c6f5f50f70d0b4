package blobsvc

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

// MemoryStore keeps uploads in memory. Used for local development & tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

type Object struct {
	ContentType string
	Data        []byte
}

var _ core.BlobStore = (*MemoryStore)(nil)

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]Object)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, up core.Upload) (string, error) {
	data, err := io.ReadAll(up.Content)
	if err != nil {
		return "", errors.Wrap(err, "reading upload")
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[key] = Object{ContentType: up.ContentType, Data: data}
	s.mu.Unlock()
	return s.baseURL + "/" + key, nil
}

func (s *MemoryStore) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
