package s3

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(client *testutil.MockS3Client, prefix string, pageSize int32) *Store {
	return NewWithClient(client, Config{
		Bucket:   "test-bucket",
		Prefix:   prefix,
		PageSize: pageSize,
	}, testutil.DiscardLogger())
}

func TestStore_List(t *testing.T) {
	base := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)

	t.Run("follows continuation tokens", func(t *testing.T) {
		var objects []testutil.BucketObject
		for i := 0; i < 7; i++ {
			objects = append(objects, testutil.BucketObject{
				Key:       fmt.Sprintf("logs/2024/03/07/entry-%02d.json", i),
				Body:      `{"i":1}`,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
		}
		mock := testutil.NewMockBuilder().WithObjects(3, objects...).Build()

		listed, err := newTestStore(mock, "logs/", 3).List(context.Background())
		require.NoError(t, err)
		require.Len(t, listed, 7)
		assert.Equal(t, "logs/2024/03/07/entry-00.json", listed[0].Key)
		assert.Equal(t, "logs/2024/03/07/entry-06.json", listed[6].Key)
		assert.Equal(t, int64(len(`{"i":1}`)), listed[0].Size)
		assert.True(t, listed[3].CreatedAt.Equal(base.Add(3*time.Minute)))
	})

	t.Run("applies prefix", func(t *testing.T) {
		mock := testutil.NewMockBuilder().WithObjects(0,
			testutil.BucketObject{Key: "logs/a.json", CreatedAt: base},
			testutil.BucketObject{Key: "tmp/b.json", CreatedAt: base},
		).Build()

		listed, err := newTestStore(mock, "logs/", 0).List(context.Background())
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "logs/a.json", listed[0].Key)
	})

	t.Run("empty bucket", func(t *testing.T) {
		mock := testutil.NewMockBuilder().WithEmptyBucket().Build()

		listed, err := newTestStore(mock, "", 0).List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("caps page size", func(t *testing.T) {
		mock := testutil.NewMockBuilder().WithListObjectsV2(
			func(ctx context.Context, input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
				assert.Equal(t, int32(1000), aws.ToInt32(input.MaxKeys))
				assert.Equal(t, "test-bucket", aws.ToString(input.Bucket))
				return testutil.CreateListObjectsV2Output(nil, "", "", false), nil
			},
		).Build()

		_, err := newTestStore(mock, "", 5000).List(context.Background())
		require.NoError(t, err)
	})

	t.Run("access denied is a whole-run error", func(t *testing.T) {
		mock := testutil.NewMockBuilder().WithAccessDenied().Build()

		_, err := newTestStore(mock, "", 0).List(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrAccessDenied)
		assert.Equal(t, errors.CodeAccessDenied, errors.CodeOf(err))
	})
}

func TestStore_Download(t *testing.T) {
	created := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	mock := testutil.NewMockBuilder().WithObjects(0,
		testutil.BucketObject{Key: "logs/a.json", Body: `{"a":1}`, CreatedAt: created},
	).Build()
	store := newTestStore(mock, "", 0)

	t.Run("returns body and sniffed type", func(t *testing.T) {
		content, err := store.Download(context.Background(), "logs/a.json")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(content.Data))
		assert.Equal(t, "logs/a.json", content.Key)
		assert.Contains(t, content.ContentType, "json")
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := store.Download(context.Background(), "logs/missing.json")
		require.Error(t, err)
		assert.True(t, errors.IsObjectNotFound(err))
		assert.Contains(t, err.Error(), "test-bucket/logs/missing.json")
	})

	t.Run("reported type wins", func(t *testing.T) {
		mock := testutil.NewMockBuilder().WithGetObject(
			func(ctx context.Context, input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
				return testutil.CreateGetObjectOutput([]byte(`{"a":1}`), "application/x-ndjson"), nil
			},
		).Build()

		content, err := newTestStore(mock, "", 0).Download(context.Background(), "x.json")
		require.NoError(t, err)
		assert.Equal(t, "application/x-ndjson", content.ContentType)
	})
}

func TestStore_Stat(t *testing.T) {
	created := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	mock := testutil.NewMockBuilder().WithObjects(0,
		testutil.BucketObject{Key: "logs/a.json", Body: `{"a":1}`, CreatedAt: created},
	).Build()
	store := newTestStore(mock, "", 0)

	meta, err := store.Stat(context.Background(), "logs/a.json")
	require.NoError(t, err)
	assert.Equal(t, int64(7), meta.Size)
	assert.True(t, meta.CreatedAt.Equal(created))
	assert.Equal(t, "application/json", meta.ContentType)

	_, err = store.Stat(context.Background(), "logs/missing.json")
	assert.ErrorIs(t, err, errors.ErrObjectNotFound)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingBucket)
}
