package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
)

// Source lists CSV objects in one bucket and stages them to local files.
type Source struct {
	store      Store
	bucket     string
	prefix     string
	stagingDir string
	filter     bridge.FileFilter
	log        *logger.Logger
}

// NewSource creates a source over cfg.Bucket. Only keys with one of
// extensions are listed. An empty StagingDir stages under the OS temp dir.
func NewSource(store Store, cfg *Config, extensions []string, log *logger.Logger) *Source {
	if log == nil {
		log = logger.Nop()
	}
	dir := cfg.StagingDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "tablescope")
	}
	return &Source{
		store:      store,
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		stagingDir: dir,
		filter:     bridge.FileFilter{Name: "csv", Extensions: extensions},
		log:        log.Named("filestore"),
	}
}

// Bucket returns the bucket the source reads from.
func (s *Source) Bucket() string {
	return s.bucket
}

// List returns the loadable objects under the prefix, sorted by key.
func (s *Source) List(ctx context.Context) ([]ObjectInfo, error) {
	all, err := s.store.ListObjects(ctx, s.bucket, ListOptions{Prefix: s.prefix, Recursive: true})
	if err != nil {
		return nil, err
	}

	var out []ObjectInfo
	for _, o := range all {
		if o.IsDir || !s.filter.Allows(o.Key) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Header reads the first CSV record of the object at key.
func (s *Source) Header(ctx context.Context, key string) ([]string, error) {
	obj, err := s.store.GetObject(ctx, s.bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	r := csv.NewReader(obj)
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindDecode, "failed to read CSV header of "+key, err)
	}
	return rec, nil
}

// Stage downloads the object at key into the staging directory and returns
// the absolute local path. The key's directory layout is kept so two objects
// with the same base name do not collide.
func (s *Source) Stage(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "object key is required")
	}

	info, err := s.store.StatObject(ctx, s.bucket, key)
	if err != nil {
		return "", err
	}
	if info.IsDir {
		return "", errs.Newf(errs.ErrKindInvalidInput, "%s is a directory", key)
	}

	dest, err := s.localPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return "", errs.Wrap(errs.ErrKindPermissionDenied, "failed to create staging directory", err)
	}
	if err := s.store.Download(ctx, s.bucket, key, dest); err != nil {
		return "", err
	}

	s.log.With().
		Str("bucket", s.bucket).
		Str("key", key).
		Str("path", dest).
		Any("size", info.Size).
		Logger().
		Info("object staged")
	return dest, nil
}

// Picker returns a bridge.Picker that stages key when asked for a file.
// A key the filter does not allow is not downloaded: the picker answers with
// the path it would have been staged at, so the caller's type check rejects
// it the same way it rejects a local file.
func (s *Source) Picker(key string) bridge.Picker {
	return bridge.PickerFunc(func(ctx context.Context, filter bridge.FileFilter) (string, error) {
		if !filter.Allows(key) || !s.filter.Allows(key) {
			s.log.With().Str("key", key).Logger().Debug("object not staged: file type not accepted")
			return s.localPath(key)
		}
		return s.Stage(ctx, key)
	})
}

// localPath maps key into the staging directory. Leading slashes and ".."
// segments cannot escape it.
func (s *Source) localPath(key string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" {
		return "", errs.Newf(errs.ErrKindInvalidInput, "invalid object key %q", key)
	}
	dir, err := filepath.Abs(s.stagingDir)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindInvalidInput, "invalid staging directory", err)
	}
	return filepath.Join(dir, s.bucket, filepath.FromSlash(clean)), nil
}
