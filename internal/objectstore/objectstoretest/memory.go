// Package objectstoretest provides an in-memory objectstore.Store for tests.
package objectstoretest

import (
	"context"
	"fmt"
	"sync"

	"github.com/tangerinesoft/photo-service/internal/objectstore"
)

type Object struct {
	Data        []byte
	ContentType string
}

// Memory is a goroutine-safe objectstore.Store. Setting PutErr or DeleteErr
// makes the corresponding call fail.
type Memory struct {
	mu        sync.Mutex
	objects   map[string]Object
	buckets   int
	PutErr    error
	DeleteErr error
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

func (m *Memory) EnsureBucket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buckets == 0 {
		m.buckets = 1
	}
	return nil
}

func (m *Memory) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.buckets = 1
	m.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *Memory) DeleteObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("%w: %s", objectstore.ErrObjectNotFound, key)
	}
	delete(m.objects, key)
	return nil
}

// Get returns the stored object for key.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o, ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Buckets returns how many buckets have been provisioned.
func (m *Memory) Buckets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buckets
}
