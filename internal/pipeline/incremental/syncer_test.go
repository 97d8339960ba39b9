package incremental

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage/memory"
)

// countingStore records every Download call.
type countingStore struct {
	storage.Store
	mu        sync.Mutex
	downloads []string
}

func (c *countingStore) Download(ctx context.Context, key string) (logtypes.Content, error) {
	c.mu.Lock()
	c.downloads = append(c.downloads, key)
	c.mu.Unlock()
	return c.Store.Download(ctx, key)
}

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func newSyncer(store storage.Store, fsys *billy.FS) *Syncer {
	return New(store, fsys, Config{
		OutputDir: "logs",
		Location:  time.UTC,
		Logger:    testutil.DiscardLogger(),
	})
}

func fileNames(t *testing.T, fsys *billy.FS, dir string) []string {
	t.Helper()
	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSyncerRun_WatermarkScenario(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("logs/06-03-2024-S0.json", []byte(`{"old":0}`), 0o644))
	require.NoError(t, fsys.WriteFile("logs/06-03-2024-S1.json", []byte(`{"old":1}`), 0o644))

	mem := memory.New("bucket", "")
	mem.PutString("app/2024/03/06/early.json", `{"old":0}`, at(6, 1))
	mem.PutString("app/2024/03/06/late.json", `{"old":2}`, at(6, 23))
	mem.PutString("app/2024/03/07/new.json", "  {\"new\":1}\n", at(7, 9))
	mem.PutString("app/2024/03/07/readme.txt", "not json", at(7, 10))
	store := &countingStore{Store: mem}

	result, err := newSyncer(store, fsys).Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, result.Watermark)
	assert.Equal(t, 1, result.Watermark.Sequence)
	assert.Equal(t, 4, result.Listed)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 2, result.HeldBack)
	assert.Equal(t, []string{"logs/07-03-2024-S0.json"}, result.Written)
	assert.Empty(t, result.Errors)

	assert.Equal(t, []string{"app/2024/03/07/new.json"}, store.downloads)
	assert.ElementsMatch(t,
		[]string{"06-03-2024-S0.json", "06-03-2024-S1.json", "07-03-2024-S0.json"},
		fileNames(t, fsys, "logs"))

	data, err := fsys.ReadFile("logs/07-03-2024-S0.json")
	require.NoError(t, err)
	assert.Equal(t, `{"new":1}`, string(data))
	assert.Equal(t, int64(len(`{"new":1}`)), result.BytesWritten)
}

func TestSyncerRun_SequencesPerDate(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	store := memory.New("bucket", "")
	store.PutString("z.json", `{"n":"8-a"}`, at(8, 1))
	store.PutString("c.json", `{"n":"7-c"}`, at(7, 12))
	store.PutString("a.json", `{"n":"7-a"}`, at(7, 3))
	store.PutString("b.json", `{"n":"7-b"}`, at(7, 12))
	store.PutString("y.json", `{"n":"8-b"}`, at(8, 5))

	result, err := newSyncer(store, fsys).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Watermark)

	want := map[string]string{
		"logs/07-03-2024-S0.json": `{"n":"7-a"}`,
		"logs/07-03-2024-S1.json": `{"n":"7-b"}`,
		"logs/07-03-2024-S2.json": `{"n":"7-c"}`,
		"logs/08-03-2024-S0.json": `{"n":"8-a"}`,
		"logs/08-03-2024-S1.json": `{"n":"8-b"}`,
	}
	assert.Equal(t, []string{
		"logs/07-03-2024-S0.json",
		"logs/07-03-2024-S1.json",
		"logs/07-03-2024-S2.json",
		"logs/08-03-2024-S0.json",
		"logs/08-03-2024-S1.json",
	}, result.Written)
	for path, body := range want {
		data, err := fsys.ReadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, body, string(data), path)
	}

	again, err := newSyncer(store, fsys).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Candidates)
	assert.Empty(t, again.Written)
}

func TestSyncerRun_PerObjectFailures(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("logs/notes.txt", []byte("x"), 0o644))

	store := memory.New("bucket", "")
	store.PutString("a.json", `{"a":1}`, at(7, 1))
	store.PutString("b.json", " \n ", at(7, 2))
	store.PutString("c.json", `{"c":1}`, at(7, 3))
	store.PutString("d.json", `{"d":1}`, at(7, 4))
	store.FailDownload("c.json", stderrors.New("connection reset"))

	result, err := newSyncer(store, fsys).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"logs/07-03-2024-S0.json", "logs/07-03-2024-S3.json"}, result.Written)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "b.json", result.Skipped[0].Key)
	assert.ErrorIs(t, result.Skipped[0].Err, errors.ErrEmptyContent)
	assert.Equal(t, errors.CodeEmptyContent, errors.CodeOf(result.Skipped[0].Err))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "c.json", result.Errors[0].Key)
	assert.Equal(t, "download", result.Errors[0].Op)
}

func TestSyncerWrite_NeverOverwrites(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("logs", 0o755))

	syncer := newSyncer(memory.New("bucket", ""), fsys)
	require.NoError(t, syncer.write("logs/07-03-2024-S0.json", []byte(`{"first":true}`)))

	err := syncer.write("logs/07-03-2024-S0.json", []byte(`{"second":true}`))
	require.Error(t, err)
	assert.True(t, errors.IsFileExists(err))
	assert.Equal(t, errors.CodeAlreadyExists, errors.CodeOf(err))

	data, err := fsys.ReadFile("logs/07-03-2024-S0.json")
	require.NoError(t, err)
	assert.Equal(t, `{"first":true}`, string(data))
}

func TestSyncerRun_DryRun(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	store := memory.New("bucket", "")
	store.PutString("a.json", `{"a":1}`, at(7, 1))
	store.PutString("b.json", `{"b":1}`, at(7, 2))

	syncer := New(store, fsys, Config{
		OutputDir: "logs",
		Location:  time.UTC,
		DryRun:    true,
		Logger:    testutil.DiscardLogger(),
	})
	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"07-03-2024-S0.json", "07-03-2024-S1.json"}, result.Planned)
	assert.Empty(t, result.Written)

	exists, err := fsys.Exists("logs")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSyncerRun_ListFailureAborts(t *testing.T) {
	store := memory.New("bucket", "")
	store.FailList(errors.ErrAccessDenied)

	_, err := newSyncer(store, billy.NewInMemoryFS()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAccessDenied)
}

func TestSyncerRun_WarnsAboutObjectsOnWatermarkDate(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	mem := memory.New("bucket", "")
	mem.PutString("app/2024/03/07/morning.json", `{"n":1}`, at(7, 9))

	_, err := newSyncer(mem, fsys).Run(context.Background())
	require.NoError(t, err)

	mem.PutString("app/2024/03/07/afternoon.json", `{"n":2}`, at(7, 15))
	mem.PutString("app/2024/03/07/notes.txt", "ignored", at(7, 16))

	var buf bytes.Buffer
	syncer := New(mem, fsys, Config{
		OutputDir: "logs",
		Location:  time.UTC,
		Logger:    testutil.BufferLogger(&buf),
	})
	result, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Candidates)
	assert.Equal(t, 2, result.HeldBack)
	assert.Empty(t, result.Written)
	assert.Contains(t, buf.String(), "objects on the watermark date are not synced")
	assert.Contains(t, buf.String(), `"count":2`)
	assert.Contains(t, buf.String(), `"date":"2024-03-07"`)
}
