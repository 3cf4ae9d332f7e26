package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/mpetrov/filedrop/applications/server/interfaces"
)

type object struct {
	contentType string
	data        []byte
}

// ObjectStore keeps objects in process memory. It backs local runs and
// tests; writes to an occupied key fail with ErrKeyCollision instead of
// overwriting.
type ObjectStore struct {
	dataByKey map[string]object
	log       log.Logger
	mutex     sync.RWMutex
}

func NewObjectStore(logger log.Logger) *ObjectStore {
	return &ObjectStore{
		dataByKey: map[string]object{},
		log:       logger,
	}
}

func (m *ObjectStore) Write(ctx context.Context, key string, contentType string, body []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.dataByKey[key]; ok {
		return fmt.Errorf("write %s: %w", key, interfaces.ErrKeyCollision)
	}

	data := make([]byte, len(body))
	copy(data, body)
	m.dataByKey[key] = object{
		contentType: contentType,
		data:        data,
	}

	level.Info(m.log).Log("msg", "object stored",
		"key", key,
		"content_type", contentType,
		"size", humanize.Bytes(uint64(len(body))),
	)

	return nil
}

// Read returns the stored body and content type for key.
func (m *ObjectStore) Read(key string) ([]byte, string, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	obj, ok := m.dataByKey[key]
	if !ok {
		return nil, "", false
	}

	return obj.data, obj.contentType, true
}

// Len returns the number of stored objects.
func (m *ObjectStore) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.dataByKey)
}

var _ interfaces.ObjectStore = (*ObjectStore)(nil)
