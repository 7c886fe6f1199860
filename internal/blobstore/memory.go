package blobstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Memory is an in-process Store used by tests and local development.
// Objects are held as byte slices; listing order is by name ascending so
// results are deterministic.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data         []byte
	lastModified time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

// Put stores an object, overwriting any previous content under the name.
func (m *Memory) Put(name string, data []byte, lastModified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = memObject{data: append([]byte(nil), data...), lastModified: lastModified}
}

// Delete removes an object; deleting a missing name is a no-op.
func (m *Memory) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
}

func (m *Memory) List(ctx context.Context, prefix string, maxResults int) ([]model.BlobDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, timeoutOr(ctx, err, "list", "")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var blobs []model.BlobDescriptor
	for name, obj := range m.objects {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		blobs = append(blobs, model.BlobDescriptor{
			Name:         name,
			LastModified: obj.lastModified,
			Size:         int64(len(obj.data)),
		})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	if maxResults > 0 && len(blobs) > maxResults {
		blobs = blobs[:maxResults]
	}
	return blobs, nil
}

func (m *Memory) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, timeoutOr(ctx, err, "metadata", name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[name]
	return ok, nil
}

func (m *Memory) Metadata(ctx context.Context, name string) (model.BlobDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return model.BlobDescriptor{}, timeoutOr(ctx, err, "metadata", name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[name]
	if !ok {
		return model.BlobDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return model.BlobDescriptor{Name: name, LastModified: obj.lastModified, Size: int64(len(obj.data))}, nil
}

func (m *Memory) Download(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, timeoutOr(ctx, err, "download", name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), obj.data...), nil
}

func (m *Memory) Ping(ctx context.Context) (ConnectionStatus, error) {
	if err := ctx.Err(); err != nil {
		return ConnectionStatus{Mode: "memory"}, timeoutOr(ctx, err, "ping", "")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ConnectionStatus{
		Connected: true,
		Container: "memory",
		Mode:      "memory",
		HasBlobs:  len(m.objects) > 0,
	}, nil
}
