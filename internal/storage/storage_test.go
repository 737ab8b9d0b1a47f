package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/resilience"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (f *fakeRedis) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, pkgredis.ErrNil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = bytes.Clone(value)
	return nil
}

func (f *fakeRedis) Close() error { return nil }

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	file, err := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, err)
	bolt, err := NewBoltStore(filepath.Join(dir, "bolt", "artifacts.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })
	return map[string]Store{
		"file":  file,
		"bolt":  bolt,
		"redis": NewRedisStore(&fakeRedis{data: make(map[string][]byte)}, "test:", false),
		"s3":    NewS3StoreWithClient(&fakeS3{objects: make(map[string][]byte)}, "bucket", "corpora"),
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert := require.New(t)

			_, err := store.Get(ctx, "corpus.ngc")
			assert.ErrorIs(err, apperrors.ErrArtifactNotFound)

			assert.NoError(store.Put(ctx, "corpus.ngc", []byte("first")))
			assert.NoError(store.Put(ctx, "corpus.ngc", []byte("second")))
			got, err := store.Get(ctx, "corpus.ngc")
			assert.NoError(err)
			assert.Equal([]byte("second"), got)

			for _, bad := range []string{"", "../x", "a/b", ".."} {
				assert.ErrorIs(store.Put(ctx, bad, []byte("x")), apperrors.ErrInvalidInput, bad)
			}
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	assert.NoError(err)
	assert.NoError(store.Put(context.Background(), "corpus.ngc", []byte("data")))

	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	assert.NoError(err)
	assert.Equal([]string{filepath.Join(dir, "corpus.ngc")}, matches)
}

type flakyStore struct {
	failures int
	calls    int
	data     []byte
}

func (f *flakyStore) Put(context.Context, string, []byte) error { return nil }

func (f *flakyStore) Get(_ context.Context, name string) ([]byte, error) {
	f.calls++
	if name == "missing" {
		return nil, notFound(name)
	}
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.data, nil
}

func (f *flakyStore) Close() error { return nil }

func resilientConfig() config.StorageConfig {
	return config.StorageConfig{
		Backend:         "fake",
		MaxAttempts:     3,
		RetryDelay:      time.Millisecond,
		BreakerFailures: 2,
		BreakerReset:    time.Hour,
	}
}

func TestResilientRetriesTransientFailures(t *testing.T) {
	assert := require.New(t)
	inner := &flakyStore{failures: 2, data: []byte("ok")}
	store := NewResilient(inner, resilientConfig())

	got, err := store.Get(context.Background(), "corpus.ngc")
	assert.NoError(err)
	assert.Equal([]byte("ok"), got)
	assert.Equal(3, inner.calls)
}

func TestResilientDoesNotRetryMissing(t *testing.T) {
	assert := require.New(t)
	inner := &flakyStore{}
	store := NewResilient(inner, resilientConfig())

	for i := 0; i < 3; i++ {
		_, err := store.Get(context.Background(), "missing")
		assert.ErrorIs(err, apperrors.ErrArtifactNotFound)
	}
	assert.Equal(3, inner.calls)
}

func TestResilientOpensBreaker(t *testing.T) {
	assert := require.New(t)
	inner := &flakyStore{failures: 100}
	store := NewResilient(inner, resilientConfig())

	for i := 0; i < 2; i++ {
		_, err := store.Get(context.Background(), "corpus.ngc")
		assert.Error(err)
	}
	calls := inner.calls
	_, err := store.Get(context.Background(), "corpus.ngc")
	assert.ErrorIs(err, resilience.ErrCircuitOpen)
	assert.Equal(calls, inner.calls)
}

func TestOpenFileBackend(t *testing.T) {
	assert := require.New(t)
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "file", Dir: t.TempDir(), MaxAttempts: 1}}
	store, err := Open(context.Background(), cfg)
	assert.NoError(err)
	defer store.Close()
	assert.NoError(store.Put(context.Background(), "a", []byte("b")))

	_, err = Open(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: "tape"}})
	assert.Error(err)
}
