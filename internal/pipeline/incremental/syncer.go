// Package incremental downloads new log objects into per-date sequence files.
//
// A run has three phases:
// 1. Inventory: resolve the local watermark and list the bucket
// 2. Planning: select objects newer than the watermark and number them
// 3. Execution: download each object and create its sequence file
//
// Files are only ever created, never overwritten, so the next run's
// watermark is exactly what this run managed to write.
package incremental

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/watermark"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Config holds the settings of an incremental sync.
type Config struct {
	// OutputDir is the directory holding the sequence files
	OutputDir string

	// Location is the time zone of compact dates; nil means time.Local
	Location *time.Location

	// DryRun plans the run and writes nothing
	DryRun bool

	// Logger receives progress and per-object failures
	Logger *slog.Logger
}

// Syncer runs the incremental sync pipeline.
type Syncer struct {
	store  storage.Store
	fs     fs.Filesystem
	cfg    Config
	logger *slog.Logger
}

// New creates a Syncer reading from store and writing through fsys.
func New(store storage.Store, fsys fs.Filesystem, cfg Config) *Syncer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		store:  store,
		fs:     fsys,
		cfg:    cfg,
		logger: logger.With("pipeline", "incremental"),
	}
}

// Run performs one incremental sync. Failures on individual objects are
// logged, recorded in the result and do not stop the run; a listing or
// output directory failure aborts it.
func (s *Syncer) Run(ctx context.Context) (*logtypes.SyncResult, error) {
	start := time.Now()
	result := &logtypes.SyncResult{}

	if !s.cfg.DryRun {
		if err := s.fs.MkdirAll(s.cfg.OutputDir, dirPerm); err != nil {
			return nil, errors.NewError("sync", err).WithKey(s.cfg.OutputDir).WithCode(errors.CodeIO)
		}
	}

	wm, found, err := watermark.ResolveDir(s.fs, s.cfg.OutputDir, s.cfg.Location)
	if err != nil {
		return nil, errors.NewError("sync", err).WithKey(s.cfg.OutputDir).WithCode(errors.CodeIO)
	}
	var since *logtypes.Watermark
	if found {
		since = &wm
		result.Watermark = &wm
		s.logger.InfoContext(ctx, "resolved watermark",
			"date", wm.Date.Format("2006-01-02"),
			"sequence", wm.Sequence)
	} else {
		s.logger.InfoContext(ctx, "no watermark found, syncing all objects",
			"dir", s.cfg.OutputDir)
	}

	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	result.Listed = len(objects)

	ops := Plan(objects, since, s.cfg.Location)
	result.Candidates = len(ops)
	result.HeldBack = HeldBack(objects, since, s.cfg.Location)
	if result.HeldBack > 0 {
		s.logger.WarnContext(ctx, "objects on the watermark date are not synced",
			"date", wm.Date.Format("2006-01-02"),
			"count", result.HeldBack)
	}
	s.logger.InfoContext(ctx, "planned sync",
		"listed", result.Listed,
		"candidates", result.Candidates)

	if s.cfg.DryRun {
		for _, op := range ops {
			result.Planned = append(result.Planned, op.FileName)
			s.logger.InfoContext(ctx, "would write object",
				"key", op.Object.Key,
				"file", op.FileName)
		}
		result.Duration = time.Since(start)
		return result, nil
	}

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		s.execute(ctx, op, result)
	}

	result.Duration = time.Since(start)
	s.logger.InfoContext(ctx, "sync complete",
		"written", len(result.Written),
		"skipped", len(result.Skipped),
		"errors", len(result.Errors),
		"duration", result.Duration)
	return result, nil
}

func (s *Syncer) execute(ctx context.Context, op Operation, result *logtypes.SyncResult) {
	key := op.Object.Key

	content, err := s.store.Download(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to download object",
			"key", key,
			"error", err)
		result.Errors = append(result.Errors, logtypes.ObjectError{Key: key, Op: "download", Err: err})
		return
	}

	data := bytes.TrimSpace(content.Data)
	if len(data) == 0 {
		s.logger.WarnContext(ctx, "skipping empty object",
			"key", key,
			"file", op.FileName)
		result.Skipped = append(result.Skipped, logtypes.SkippedObject{
			Key:    key,
			Reason: "empty content",
			Err:    errors.NewError("sync", errors.ErrEmptyContent).WithKey(key),
		})
		return
	}

	path := filepath.Join(s.cfg.OutputDir, op.FileName)
	if err := s.write(path, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to write sequence file",
			"key", key,
			"file", path,
			"error", err)
		result.Errors = append(result.Errors, logtypes.ObjectError{Key: key, Op: "write", Err: err})
		return
	}

	result.Written = append(result.Written, path)
	result.BytesWritten += int64(len(data))
	s.logger.InfoContext(ctx, "wrote object",
		"key", key,
		"file", path,
		"bytes", len(data))
}

// write creates path exclusively. A partially written file is removed so a
// later run can retry the same name.
func (s *Syncer) write(path string, data []byte) error {
	f, err := s.fs.CreateExclusive(path, filePerm)
	if err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return errors.NewError("write", stderrors.Join(errors.ErrFileExists, err)).WithKey(path)
		}
		return errors.NewError("write", err).WithKey(path).WithCode(errors.CodeIO)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(path)
		return errors.NewError("write", fmt.Errorf("write %s: %w", path, err)).WithKey(path).WithCode(errors.CodeIO)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(path)
		return errors.NewError("write", fmt.Errorf("close %s: %w", path, err)).WithKey(path).WithCode(errors.CodeIO)
	}
	return nil
}
