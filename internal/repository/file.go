package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	v1 "lingoflow/pkg/api/v1"
)

const DefaultFilePath = "data/features.json"

// FileOptions configures a FileStore.
type FileOptions struct {
	// Path of the JSON document. Its directory is created on first write.
	Path string
	// Locker guards mutations; nil means an in-process mutex.
	Locker Locker
}

// FileStore keeps the whole DataStore in one pretty-printed JSON document and
// rewrites it on every mutation.
type FileStore struct {
	path   string
	locker Locker
}

func NewFileStore(opts FileOptions) *FileStore {
	if opts.Path == "" {
		opts.Path = DefaultFilePath
	}
	if opts.Locker == nil {
		opts.Locker = NewMutexLocker()
	}
	return &FileStore{path: opts.Path, locker: opts.Locker}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) ListAll(ctx context.Context) ([]v1.Feature, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	sortByUpdated(data.Features)
	return data.Features, nil
}

func (s *FileStore) GetByID(ctx context.Context, id string) (*v1.Feature, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range data.Features {
		if data.Features[i].ID == id {
			return &data.Features[i], nil
		}
	}
	return nil, ErrFeatureNotFound
}

func (s *FileStore) Create(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}
	f := newFeature(in)
	err := s.mutate(ctx, func(data *v1.DataStore) (bool, error) {
		data.Features = append(data.Features, f)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FileStore) Update(ctx context.Context, id string, in v1.UpdateFeatureInput) (*v1.Feature, error) {
	var updated v1.Feature
	err := s.mutate(ctx, func(data *v1.DataStore) (bool, error) {
		idx := indexOf(data.Features, id)
		if idx < 0 {
			return false, ErrFeatureNotFound
		}
		applyUpdate(&data.Features[idx], in)
		updated = data.Features[idx]
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.mutate(ctx, func(data *v1.DataStore) (bool, error) {
		idx := indexOf(data.Features, id)
		if idx < 0 {
			return false, nil
		}
		data.Features = append(data.Features[:idx], data.Features[idx+1:]...)
		found = true
		return true, nil
	})
	return found, err
}

func (s *FileStore) Search(ctx context.Context, query string) ([]v1.Feature, error) {
	features, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(features, query), nil
}

// Health fails when the document exists but cannot be read.
func (s *FileStore) Health(ctx context.Context) error {
	_, err := s.read()
	return err
}

// mutate runs fn over a fresh copy of the document under the store lock and
// writes the result back when fn reports a change.
func (s *FileStore) mutate(ctx context.Context, fn func(*v1.DataStore) (bool, error)) (err error) {
	if err := s.locker.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if uerr := s.locker.Unlock(ctx); uerr != nil && err == nil {
			err = uerr
		}
	}()

	data, err := s.read()
	if err != nil {
		return err
	}
	changed, err := fn(data)
	if err != nil || !changed {
		return err
	}
	return s.write(data)
}

func (s *FileStore) read() (*v1.DataStore, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &v1.DataStore{Features: []v1.Feature{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var data v1.DataStore
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if data.Features == nil {
		data.Features = []v1.Feature{}
	}
	return &data, nil
}

// write replaces the document through a temp file and rename so readers never
// see a partial write.
func (s *FileStore) write(data *v1.DataStore) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode data store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".features-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func indexOf(features []v1.Feature, id string) int {
	for i := range features {
		if features[i].ID == id {
			return i
		}
	}
	return -1
}
