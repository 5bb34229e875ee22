package filestore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
)

// memStore is an in-memory Store over a single bucket.
type memStore struct {
	bucket  string
	objects map[string][]byte
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) ListObjects(_ context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error) {
	if bucket != m.bucket {
		return nil, errs.Newf(errs.ErrKindNotFound, "no bucket %s", bucket)
	}
	var out []ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, opts.Prefix) {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(v)), IsDir: strings.HasSuffix(k, "/")})
		}
	}
	return out, nil
}

func (m *memStore) StatObject(_ context.Context, bucket, key string) (*ObjectInfo, error) {
	v, ok := m.objects[key]
	if bucket != m.bucket || !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "no object %s", key)
	}
	return &ObjectInfo{Key: key, Size: int64(len(v)), IsDir: strings.HasSuffix(key, "/")}, nil
}

func (m *memStore) GetObject(ctx context.Context, bucket, key string) (Object, error) {
	info, err := m.StatObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return &memObject{ReadCloser: io.NopCloser(bytes.NewReader(m.objects[key])), info: info}, nil
}

func (m *memStore) Download(_ context.Context, bucket, key, dest string) error {
	v, ok := m.objects[key]
	if bucket != m.bucket || !ok {
		return errs.Newf(errs.ErrKindNotFound, "no object %s", key)
	}
	return os.WriteFile(dest, v, 0o600)
}

type memObject struct {
	io.ReadCloser
	info *ObjectInfo
}

func (o *memObject) Info() *ObjectInfo { return o.info }

func newTestSource(t *testing.T) (*Source, string) {
	t.Helper()
	store := &memStore{bucket: "imports", objects: map[string][]byte{
		"csv/item.csv":        []byte("item_id,name\n1,flour\n"),
		"csv/recipe.CSV":      []byte("recipe_id,title\n"),
		"csv/notes.txt":       []byte("hello"),
		"csv/archive/":        nil,
		"csv/archive/old.csv": []byte(""),
		"other/nutrient.csv":  []byte("id\n"),
	}}
	dir := t.TempDir()
	cfg := &Config{Bucket: "imports", Prefix: "csv/", StagingDir: dir}
	return NewSource(store, cfg, []string{".csv"}, nil), dir
}

func TestSource_List(t *testing.T) {
	src, _ := newTestSource(t)

	objs, err := src.List(context.Background())
	require.NoError(t, err)

	var keys []string
	for _, o := range objs {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"csv/archive/old.csv", "csv/item.csv", "csv/recipe.CSV"}, keys)
}

func TestSource_Stage(t *testing.T) {
	src, dir := newTestSource(t)

	path, err := src.Stage(context.Background(), "csv/item.csv")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(dir, "imports", "csv", "item.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "item_id,name\n1,flour\n", string(data))
}

func TestSource_Stage_Errors(t *testing.T) {
	src, _ := newTestSource(t)

	_, err := src.Stage(context.Background(), " ")
	assert.True(t, errs.IsInvalidInput(err))

	_, err = src.Stage(context.Background(), "csv/missing.csv")
	assert.True(t, errs.IsNotFound(err))

	_, err = src.Stage(context.Background(), "csv/archive/")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestSource_LocalPathStaysInStagingDir(t *testing.T) {
	src, dir := newTestSource(t)

	p, err := src.localPath("../../etc/passwd.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, dir+string(filepath.Separator)))
}

func TestSource_Header(t *testing.T) {
	src, _ := newTestSource(t)

	h, err := src.Header(context.Background(), "csv/item.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"item_id", "name"}, h)

	h, err = src.Header(context.Background(), "csv/archive/old.csv")
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestSource_Picker(t *testing.T) {
	src, dir := newTestSource(t)
	shell := bridge.NewShell(nil, src.Picker("csv/recipe.CSV"), bridge.CSVFilter)

	path, ok, err := shell.PickFile(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "imports", "csv", "recipe.CSV"), path)
}

func TestSource_Picker_WrongTypeNotDownloaded(t *testing.T) {
	src, dir := newTestSource(t)
	shell := bridge.NewShell(nil, src.Picker("csv/notes.txt"), bridge.CSVFilter)

	path, ok, err := shell.PickFile(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "imports", "csv", "notes.txt"), path)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "object must not be staged")
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Endpoint: "localhost:9000"}).Validate())
	assert.Error(t, (&Config{Endpoint: "localhost:9000", Bucket: "b", Provider: "azure"}).Validate())

	cfg := DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
	cfg.Bucket = "imports"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Enabled())
}
