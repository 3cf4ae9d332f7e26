package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/filedrop/applications/server/domain"
	"github.com/mpetrov/filedrop/applications/server/interfaces"
	mpdecoder "github.com/mpetrov/filedrop/applications/server/multipart"
)

// scriptedStore fails a configurable number of times per key prefix and
// records successful writes.
type scriptedStore struct {
	mu          sync.Mutex
	collisions  int
	failWrites  bool
	objects     map[string][]byte
	contentType map[string]string
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{
		objects:     map[string][]byte{},
		contentType: map[string]string{},
	}
}

func (s *scriptedStore) Write(_ context.Context, key string, contentType string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collisions > 0 {
		s.collisions--
		return fmt.Errorf("write %s: %w", key, interfaces.ErrKeyCollision)
	}
	if s.failWrites {
		return errors.New("store is on fire")
	}

	s.objects[key] = body
	s.contentType[key] = contentType

	return nil
}

type sequenceKeys struct {
	mu   sync.Mutex
	n    int
	keys []string
}

func (g *sequenceKeys) Key(extension string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	key := fmt.Sprintf("key-%d", g.n)
	if extension != "" {
		key += "." + extension
	}
	g.keys = append(g.keys, key)

	return key
}

func testLimits() mpdecoder.Limits {
	return mpdecoder.Limits{
		MaxFilesize:       1024,
		MaxFilesPerUpload: 10,
	}
}

func newTestService(store interfaces.ObjectStore, keys interfaces.KeyGenerator) *service {
	return &service{
		store:   store,
		keys:    keys,
		decoder: mpdecoder.NewDecoder(testLimits(), log.NewNopLogger()),
		logger:  log.NewNopLogger(),
	}
}

func descriptors(bodies ...string) []domain.FileDescriptor {
	files := make([]domain.FileDescriptor, 0, len(bodies))
	for i, body := range bodies {
		files = append(files, domain.FileDescriptor{
			Data:     []byte(body),
			Filename: fmt.Sprintf("file-%d.txt", i),
			Mime:     "text/plain",
		})
	}
	return files
}

func TestUploadAllResolvesEveryFile(t *testing.T) {
	store := newScriptedStore()
	svc := newTestService(store, &sequenceKeys{})

	files := descriptors("one", "second file", "and a third one")
	result := svc.uploadAll(context.Background(), files)

	require.Len(t, result, len(files))

	names := map[string]bool{}
	for _, outcome := range result {
		assert.False(t, outcome.Failed)
		names[outcome.Name] = true

		body, ok := store.objects[outcome.Key]
		require.True(t, ok, "no object under key %s", outcome.Key)
		digest := sha1.Sum(body)
		assert.Equal(t, hex.EncodeToString(digest[:]), outcome.Hash)
		assert.Equal(t, int64(len(body)), outcome.Size)
	}
	assert.Len(t, names, len(files))
}

func TestUploadOneRetriesOnCollision(t *testing.T) {
	store := newScriptedStore()
	store.collisions = 3
	keys := &sequenceKeys{}
	svc := newTestService(store, keys)

	outcome := svc.uploadOne(context.Background(), domain.FileDescriptor{
		Data:      []byte("collide with me"),
		Filename:  "c.txt",
		Extension: "txt",
	})

	assert.False(t, outcome.Failed)
	// three collisions burn three keys; the fourth one sticks
	require.Len(t, keys.keys, 4)
	assert.Equal(t, "key-4.txt", outcome.Key)
	assert.Equal(t, keys.keys[3], outcome.Key)

	body, ok := store.objects[outcome.Key]
	require.True(t, ok)
	assert.Equal(t, []byte("collide with me"), body)
}

func TestUploadOneStoreFailure(t *testing.T) {
	store := newScriptedStore()
	store.failWrites = true
	svc := newTestService(store, &sequenceKeys{})

	outcome := svc.uploadOne(context.Background(), domain.FileDescriptor{
		Data:     []byte("doomed"),
		Filename: "d.txt",
	})

	assert.True(t, outcome.Failed)
	assert.Equal(t, "d.txt", outcome.Name)
	assert.Equal(t, 500, outcome.ErrorCode)
	assert.Equal(t, "internal server error", outcome.Description)
	assert.Empty(t, store.objects)
}

func TestUploadOneDefaultsContentType(t *testing.T) {
	store := newScriptedStore()
	svc := newTestService(store, &sequenceKeys{})

	outcome := svc.uploadOne(context.Background(), domain.FileDescriptor{
		Data:     []byte("typeless"),
		Filename: "t",
	})

	require.False(t, outcome.Failed)
	assert.Equal(t, "application/octet-stream", store.contentType[outcome.Key])
}

func TestUploadDecodeFailureSkipsStore(t *testing.T) {
	store := newScriptedStore()
	svc := newTestService(store, &sequenceKeys{})

	_, err := svc.Upload(context.Background(), domain.Upload{
		ContentLength: 10,
		ContentType:   "application/json",
		Body:          bytes.NewReader(nil),
	})

	assert.ErrorIs(t, err, domain.ErrBadContentType)
	assert.Empty(t, store.objects)
}

func TestUploadEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range []struct{ name, data string }{
		{"a.txt", "0123456789"},
		{"b.bin", "01234567890123456789"},
	} {
		part, err := w.CreateFormFile("files[]", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	store := newScriptedStore()
	svc := newTestService(store, &sequenceKeys{})

	result, err := svc.Upload(context.Background(), domain.Upload{
		ContentLength: int64(buf.Len()),
		ContentType:   w.FormDataContentType(),
		Body:          &buf,
	})

	require.NoError(t, err)
	require.Len(t, result, 2)

	sizes := map[string]int64{}
	for _, outcome := range result {
		require.False(t, outcome.Failed)
		sizes[outcome.Name] = outcome.Size
	}
	assert.Equal(t, int64(10), sizes["a.txt"])
	assert.Equal(t, int64(20), sizes["b.bin"])
}
