package output

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/filestore"
)

const doc = "export namespace shop {\n}\n"

func TestNewFileWriter_DefaultName(t *testing.T) {
	assert.Equal(t, "shop.d.ts", NewFileWriter("", "shop").Path)
	assert.Equal(t, "out/x.d.ts", NewFileWriter("out/x.d.ts", "shop").Path)
}

func TestFileWriter_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types", "db", "shop.d.ts")
	w := NewFileWriter(path, "shop")

	require.NoError(t, w.Write(context.Background(), []byte(doc)))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(got))
}

func TestFileWriter_Stdout(t *testing.T) {
	var buf bytes.Buffer
	w := &FileWriter{Path: Stdout, Out: &buf}

	require.NoError(t, w.Write(context.Background(), []byte(doc)))
	assert.Equal(t, doc, buf.String())
}

func TestFileWriter_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	w := NewFileWriter(filepath.Join(blocker, "shop.d.ts"), "shop")
	err := w.Write(context.Background(), []byte(doc))
	assert.Equal(t, errs.ErrKindWriteFailed, errs.KindOf(err))
}

type fakeStore struct {
	buckets     map[string]bool
	objects     map[string]string
	contentType string
	putErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{buckets: map[string]bool{}, objects: map[string]string{}}
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }

func (f *fakeStore) EnsureBucket(_ context.Context, bucket string) error {
	f.buckets[bucket] = true
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*filestore.ObjectInfo, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.objects[bucket+"/"+key] = string(b)
	f.contentType = contentType
	return &filestore.ObjectInfo{Bucket: bucket, Key: key, Size: size, ETag: "abc"}, nil
}

func (f *fakeStore) PresignGetURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "http://minio.local/" + bucket + "/" + key, nil
}

func TestObjectWriter(t *testing.T) {
	store := newFakeStore()
	cfg := &filestore.Config{Bucket: "types", Prefix: "mysql/", PresignTTL: time.Hour}
	w := NewObjectWriter(store, cfg, "out/shop.d.ts")

	require.NoError(t, w.Write(context.Background(), []byte(doc)))
	assert.True(t, store.buckets["types"])
	assert.Equal(t, doc, store.objects["types/mysql/shop.d.ts"])
	assert.Equal(t, ContentType, store.contentType)
}

func TestMulti_StopsAtFirstError(t *testing.T) {
	failing := newFakeStore()
	failing.putErr = errs.New(errs.ErrKindPermissionDenied, "denied")

	var buf bytes.Buffer
	m := Multi{
		&ObjectWriter{Store: failing, Bucket: "b", Key: "k"},
		&FileWriter{Path: Stdout, Out: &buf},
	}

	err := m.Write(context.Background(), []byte(doc))
	assert.True(t, errs.IsPermissionDenied(err))
	assert.Empty(t, buf.String())
}

func TestMulti_WritesAll(t *testing.T) {
	var a, b bytes.Buffer
	m := Multi{&FileWriter{Path: Stdout, Out: &a}, &FileWriter{Path: Stdout, Out: &b}}

	require.NoError(t, m.Write(context.Background(), []byte(doc)))
	assert.Equal(t, doc, a.String())
	assert.Equal(t, doc, b.String())
}
