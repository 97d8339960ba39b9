package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/input-output-hk/catalyst-forge-libs/logsync"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage/memory"
)

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	if a.zapLogger == nil {
		a.zapLogger = zaptest.NewLogger(t)
	}
	var out bytes.Buffer
	cmd := a.rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_MissingBucket(t *testing.T) {
	_, err := execute(t, newApp(envMap(nil)), "sync")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingBucket)
}

func TestRun_MemoryBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, newApp(envMap(map[string]string{"BUCKET_NAME": "my-logs"})),
		"all", "--backend", "memory", "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "sync: wrote 0 files")
	assert.Contains(t, out, "left unchanged")
	assert.DirExists(t, dir)
}

func TestRun_FlagsOverrideEnvironment(t *testing.T) {
	a := newApp(envMap(map[string]string{
		"LOGSYNC_BUCKET":  "env-bucket",
		"LOGSYNC_BACKEND": "ftp",
	}))
	_, err := execute(t, a, "sync", "--backend", "memory", "--bucket", "flag-bucket", "--dry-run",
		"--output-dir", t.TempDir())
	require.NoError(t, err)
}

func TestRun_SyncAndToday(t *testing.T) {
	now := time.Now().UTC()
	fragment := now.Format("2006/01/02")

	store := memory.New("my-logs", "")
	store.PutString("app/"+fragment+"/a.json", `{"a":1}`, now.Add(-2*time.Minute))
	store.PutString("app/"+fragment+"/b.json", "{\"b\":1}\n{\"b\":2}", now.Add(-time.Minute))
	fsys := billy.NewInMemoryFS()

	a := newApp(envMap(map[string]string{"LOGSYNC_BUCKET": "my-logs", "LOGSYNC_TIMEZONE": "UTC"}))
	a.clientOpts = []logsync.Option{
		logsync.WithStore(store),
		logsync.WithFilesystem(fsys),
		logsync.WithClock(func() time.Time { return now }),
	}

	out, err := execute(t, a, "all", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "sync: wrote 2 files, skipped 0, failed 0")
	assert.Contains(t, out, "today: wrote 3 entries from 2 objects")

	data, err := fsys.ReadFile("logs/today.json")
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":1}\n{\"b\":2}\n", string(data))
}

func TestRun_DryRun(t *testing.T) {
	store := memory.New("my-logs", "")
	store.PutString("a.json", `{"a":1}`, time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC))
	fsys := billy.NewInMemoryFS()

	a := newApp(envMap(map[string]string{"LOGSYNC_BUCKET": "my-logs"}))
	a.clientOpts = []logsync.Option{logsync.WithStore(store), logsync.WithFilesystem(fsys)}

	out, err := execute(t, a, "sync", "--backend", "memory", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "sync: would write 1 files")

	exists, err := fsys.Exists("logs")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_UnknownLogFormat(t *testing.T) {
	a := newApp(envMap(map[string]string{"LOGSYNC_BUCKET": "my-logs"}))
	var out bytes.Buffer
	cmd := a.rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"sync", "--log-format", "xml", "--backend", "memory"})
	assert.Error(t, cmd.Execute())
}
