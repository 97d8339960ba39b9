// Package aggregate combines every log object stored under today's date path
// into a single line-delimited JSON file. Each run rebuilds the file from
// scratch; a run that finds no objects leaves the previous file in place.
package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/datepath"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/normalize"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
)

// DefaultFileName is the default name of the combined output file.
const DefaultFileName = "today.json"

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Config holds the settings of a daily aggregation.
type Config struct {
	// OutputDir is the directory holding the combined file
	OutputDir string

	// FileName is the combined file name; empty means DefaultFileName
	FileName string

	// Matcher decides which keys belong to today
	Matcher datepath.Matcher

	// Now returns the current time; nil means time.Now
	Now func() time.Time

	// Logger receives progress and per-object failures
	Logger *slog.Logger
}

// Aggregator runs the daily aggregation pipeline.
type Aggregator struct {
	store  storage.Store
	fs     fs.Filesystem
	cfg    Config
	logger *slog.Logger
}

// New creates an Aggregator reading from store and writing through fsys.
func New(store storage.Store, fsys fs.Filesystem, cfg Config) *Aggregator {
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		store:  store,
		fs:     fsys,
		cfg:    cfg,
		logger: logger.With("pipeline", "aggregate"),
	}
}

// Path returns the combined output file path.
func (a *Aggregator) Path() string {
	return filepath.Join(a.cfg.OutputDir, a.cfg.FileName)
}

// Run rebuilds the combined file from today's objects.
func (a *Aggregator) Run(ctx context.Context) (*logtypes.AggregateResult, error) {
	start := time.Now()
	now := a.cfg.Now()
	result := &logtypes.AggregateResult{
		Path:     a.Path(),
		Fragment: datepath.FormatPathFragment(now),
	}

	objects, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}
	result.Listed = len(objects)

	matched := a.match(ctx, objects, now)
	result.Matched = len(matched)
	if len(matched) == 0 {
		a.logger.InfoContext(ctx, "no objects found for today",
			"fragment", result.Fragment,
			"listed", result.Listed)
		result.Duration = time.Since(start)
		return result, nil
	}
	a.logger.InfoContext(ctx, "aggregating objects",
		"fragment", result.Fragment,
		"matched", result.Matched)

	if err := a.fs.MkdirAll(a.cfg.OutputDir, dirPerm); err != nil {
		return nil, errors.NewError("aggregate", err).WithKey(a.cfg.OutputDir).WithCode(errors.CodeIO)
	}
	f, err := a.fs.OpenFile(result.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, errors.NewError("aggregate", err).WithKey(result.Path).WithCode(errors.CodeIO)
	}
	result.Written = true

	w := bufio.NewWriter(f)
	for _, obj := range matched {
		if err := ctx.Err(); err != nil {
			_ = f.Close()
			return result, err
		}
		if err := a.append(ctx, w, obj, result); err != nil {
			_ = f.Close()
			return result, errors.NewError("aggregate", err).WithKey(result.Path).WithCode(errors.CodeIO)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return result, errors.NewError("aggregate", fmt.Errorf("flush: %w", err)).WithKey(result.Path).WithCode(errors.CodeIO)
	}
	if err := f.Close(); err != nil {
		return result, errors.NewError("aggregate", fmt.Errorf("close: %w", err)).WithKey(result.Path).WithCode(errors.CodeIO)
	}

	result.Duration = time.Since(start)
	a.logger.InfoContext(ctx, "aggregation complete",
		"path", result.Path,
		"objects", result.Objects,
		"entries", result.Entries,
		"malformed_lines", result.MalformedLines,
		"errors", len(result.Errors),
		"duration", result.Duration)
	return result, nil
}

// match filters objects to today's JSON keys, refreshes their metadata and
// orders them by creation time.
func (a *Aggregator) match(ctx context.Context, objects []logtypes.Object, now time.Time) []logtypes.Object {
	matched := make([]logtypes.Object, 0)
	for _, obj := range objects {
		if !storage.HasJSONExtension(obj.Key) || !a.cfg.Matcher.MatchesDay(obj.Key, now) {
			continue
		}

		meta, err := a.store.Stat(ctx, obj.Key)
		if err != nil {
			a.logger.WarnContext(ctx, "failed to stat object, using listing metadata",
				"key", obj.Key,
				"error", err)
		} else {
			obj.Size = meta.Size
			if !meta.CreatedAt.IsZero() {
				obj.CreatedAt = meta.CreatedAt
			}
			a.logger.DebugContext(ctx, "matched object",
				"key", obj.Key,
				"size", meta.Size,
				"created_at", obj.CreatedAt,
				"content_type", meta.ContentType)
		}
		matched = append(matched, obj)
	}
	storage.SortByCreated(matched)
	return matched
}

// append writes one object's values to w. Only write errors on the combined
// file are returned; object failures are recorded in result.
func (a *Aggregator) append(ctx context.Context, w *bufio.Writer, obj logtypes.Object, result *logtypes.AggregateResult) error {
	content, err := a.store.Download(ctx, obj.Key)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to download object",
			"key", obj.Key,
			"error", err)
		result.Errors = append(result.Errors, logtypes.ObjectError{Key: obj.Key, Op: "download", Err: err})
		return nil
	}

	if len(bytes.TrimSpace(content.Data)) == 0 {
		a.logger.WarnContext(ctx, "skipping empty object", "key", obj.Key)
		result.Skipped = append(result.Skipped, logtypes.SkippedObject{
			Key:    obj.Key,
			Reason: "empty content",
			Err:    errors.NewError("aggregate", errors.ErrEmptyContent).WithKey(obj.Key),
		})
		return nil
	}

	normalized := normalize.Normalize(content.Data)
	for _, m := range normalized.Malformed {
		a.logger.WarnContext(ctx, "skipping malformed line",
			"key", obj.Key,
			"line", m.Line,
			"excerpt", m.Excerpt,
			"error", m.Err)
	}
	result.MalformedLines += len(normalized.Malformed)

	if len(normalized.Values) == 0 {
		a.logger.WarnContext(ctx, "no valid entries in object", "key", obj.Key)
		result.Skipped = append(result.Skipped, logtypes.SkippedObject{Key: obj.Key, Reason: "no valid entries"})
		return nil
	}

	for _, v := range normalized.Values {
		if _, err := w.Write(v.Bytes()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	result.Objects++
	result.Entries += len(normalized.Values)
	a.logger.DebugContext(ctx, "appended object",
		"key", obj.Key,
		"encoding", normalized.Encoding.String(),
		"entries", len(normalized.Values))
	return nil
}
