// Package memory provides an in-process storage backend. It backs the
// pipeline tests and the "memory" backend used for local smoke runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
)

type object struct {
	data        []byte
	createdAt   time.Time
	contentType string
}

// Store is a map-backed storage.Store. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	bucket  string
	prefix  string
	objects map[string]object
	failing map[string]error
	listErr error
}

var _ storage.Store = (*Store)(nil)

// New creates an empty Store for bucket, scoped to prefix.
func New(bucket, prefix string) *Store {
	return &Store{
		bucket:  bucket,
		prefix:  prefix,
		objects: make(map[string]object),
		failing: make(map[string]error),
	}
}

// Put stores data under key with the given creation time.
func (s *Store) Put(key string, data []byte, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: append([]byte(nil), data...), createdAt: createdAt.UTC()}
}

// PutString is Put for string bodies.
func (s *Store) PutString(key, body string, createdAt time.Time) {
	s.Put(key, []byte(body), createdAt)
}

// FailDownload makes every Download and Stat of key return err.
func (s *Store) FailDownload(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[key] = err
}

// FailList makes List return err.
func (s *Store) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// List returns all objects under the prefix, ordered by key.
func (s *Store) List(ctx context.Context) ([]logtypes.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewError("list", err).WithBucket(s.bucket)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listErr != nil {
		return nil, errors.NewError("list", s.listErr).WithBucket(s.bucket)
	}

	objects := make([]logtypes.Object, 0, len(s.objects))
	for key, obj := range s.objects {
		if !strings.HasPrefix(key, s.prefix) {
			continue
		}
		objects = append(objects, logtypes.Object{
			Key:       key,
			Size:      int64(len(obj.data)),
			CreatedAt: obj.createdAt,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Download returns a copy of the body stored under key.
func (s *Store) Download(ctx context.Context, key string) (logtypes.Content, error) {
	obj, err := s.lookup(ctx, "download", key)
	if err != nil {
		return logtypes.Content{}, err
	}
	data := append([]byte(nil), obj.data...)
	return logtypes.Content{
		Key:         key,
		Data:        data,
		ContentType: storage.DetectContentType(obj.contentType, data),
	}, nil
}

// Stat returns metadata for key.
func (s *Store) Stat(ctx context.Context, key string) (logtypes.ObjectMetadata, error) {
	obj, err := s.lookup(ctx, "stat", key)
	if err != nil {
		return logtypes.ObjectMetadata{}, err
	}
	return logtypes.ObjectMetadata{
		Size:        int64(len(obj.data)),
		CreatedAt:   obj.createdAt,
		ContentType: storage.DetectContentType(obj.contentType, obj.data),
	}, nil
}

func (s *Store) lookup(ctx context.Context, op, key string) (object, error) {
	if err := ctx.Err(); err != nil {
		return object{}, errors.NewObjectError(op, s.bucket, key, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.failing[key]; ok {
		return object{}, errors.NewObjectError(op, s.bucket, key, err)
	}
	obj, ok := s.objects[key]
	if !ok {
		return object{}, errors.NewObjectError(op, s.bucket, key, errors.ErrObjectNotFound)
	}
	return obj, nil
}
