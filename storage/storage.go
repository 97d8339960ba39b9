// Package storage defines the object-storage capability consumed by the
// logsync pipelines, plus helpers shared by every backend.
//
// Backends live in subpackages: s3 (AWS SDK v2), minio (minio-go) and
// memory (in-process, for tests and dry runs).
package storage

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
)

// Store is the object-storage capability. List returns every object under the
// configured bucket and prefix; pagination is the implementation's concern.
type Store interface {
	// List returns all objects as one logically complete sequence.
	List(ctx context.Context) ([]logtypes.Object, error)

	// Download fetches the full body of the object at key.
	Download(ctx context.Context, key string) (logtypes.Content, error)

	// Stat fetches metadata for the object at key without its body.
	Stat(ctx context.Context, key string) (logtypes.ObjectMetadata, error)
}

// JSONExtension is the only object extension the pipelines consider.
const JSONExtension = ".json"

// HasJSONExtension reports whether key names a JSON object.
// The comparison is case-insensitive.
func HasJSONExtension(key string) bool {
	return strings.EqualFold(path.Ext(key), JSONExtension)
}

// SortByCreated orders objects by creation time ascending. Equal timestamps
// are ordered by key so runs are reproducible.
func SortByCreated(objects []logtypes.Object) {
	sort.SliceStable(objects, func(i, j int) bool {
		if !objects[i].CreatedAt.Equal(objects[j].CreatedAt) {
			return objects[i].CreatedAt.Before(objects[j].CreatedAt)
		}
		return objects[i].Key < objects[j].Key
	})
}
