// Package logtypes provides shared type definitions for the logsync module.
package logtypes

import (
	"time"
)

// Object represents a remote log object with its listing metadata.
type Object struct {
	// Key is the full storage key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// CreatedAt is when the object was written to storage (UTC)
	CreatedAt time.Time

	// ETag is the storage entity tag for the object
	ETag string
}

// ObjectMetadata represents metadata fetched for a single object.
type ObjectMetadata struct {
	// Size is the object size in bytes
	Size int64

	// CreatedAt is when the object was written to storage (UTC)
	CreatedAt time.Time

	// ContentType is the MIME type reported by the backend
	ContentType string

	// ETag is the storage entity tag for the object
	ETag string
}

// Content is the downloaded body of an object.
type Content struct {
	// Key is the object key the content was read from
	Key string

	// Data is the raw object body
	Data []byte

	// ContentType is the reported or detected MIME type
	ContentType string
}

// Watermark marks the most recent (date, sequence) already persisted locally.
type Watermark struct {
	// Date is midnight of the calendar date in the compact-date location
	Date time.Time

	// Sequence is the highest sequence number seen for Date
	Sequence int
}

// After reports whether w is strictly greater than other under
// (date, sequence) ordering.
func (w Watermark) After(other Watermark) bool {
	if !w.Date.Equal(other.Date) {
		return w.Date.After(other.Date)
	}
	return w.Sequence > other.Sequence
}

// ObjectError records a per-object failure that did not abort the run.
type ObjectError struct {
	// Key is the object key that failed
	Key string

	// Op is the step that failed (download, write, normalize)
	Op string

	// Err is the underlying error
	Err error
}

func (e ObjectError) Error() string {
	return e.Op + " " + e.Key + ": " + e.Err.Error()
}

// SkippedObject records an object that was intentionally not persisted.
type SkippedObject struct {
	// Key is the object key that was skipped
	Key string

	// Reason describes why the object was skipped
	Reason string

	// Err classifies the skip when it maps to a coded error, e.g. empty content
	Err error
}

// SyncResult contains the result of an incremental sync run.
type SyncResult struct {
	// Watermark is the watermark the run started from, nil when none existed
	Watermark *Watermark

	// Listed is the number of objects returned by the storage listing
	Listed int

	// Candidates is the number of objects newer than the watermark
	Candidates int

	// HeldBack is the number of JSON objects dated on the watermark date.
	// They are never synced because that date already has sequence files.
	HeldBack int

	// Written lists the sequence files created, in write order
	Written []string

	// Planned lists the sequence files a dry run would have created
	Planned []string

	// BytesWritten is the total number of bytes persisted
	BytesWritten int64

	// Skipped contains objects skipped for empty content
	Skipped []SkippedObject

	// Errors contains per-object failures
	Errors []ObjectError

	// Duration is how long the run took
	Duration time.Duration
}

// AggregateResult contains the result of a daily aggregation run.
type AggregateResult struct {
	// Path is the combined output file
	Path string

	// Fragment is the date path fragment objects were matched against
	Fragment string

	// Listed is the number of objects returned by the storage listing
	Listed int

	// Matched is the number of objects whose key matched today's fragment
	Matched int

	// Written reports whether the combined file was (re)written
	Written bool

	// Objects is the number of objects that contributed at least one entry
	Objects int

	// Entries is the number of JSON lines written
	Entries int

	// MalformedLines is the number of lines dropped by the normalizer
	MalformedLines int

	// Skipped contains objects skipped for empty content or no valid entries
	Skipped []SkippedObject

	// Errors contains per-object failures
	Errors []ObjectError

	// Duration is how long the run took
	Duration time.Duration
}
