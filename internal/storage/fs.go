package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FS stores objects as files under root/<bucket>/<name>. Content types are
// not persisted.
type FS struct {
	fs   afero.Fs
	root string
}

// NewFS returns a backend rooted at root on fsys. Use afero.NewOsFs for
// local runs and afero.NewMemMapFs in tests.
func NewFS(fsys afero.Fs, root string) *FS {
	return &FS{fs: fsys, root: root}
}

func (s *FS) path(bucket, name string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	clean := path.Clean("/" + name)
	if name == "" || clean == "/" {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(clean)), nil
}

func (s *FS) Read(ctx context.Context, bucket, name string) ([]byte, error) {
	p, err := s.path(bucket, name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", bucket, name, ErrNotExist)
	}
	return data, err
}

func (s *FS) Write(ctx context.Context, bucket, name string, data []byte, contentType string) error {
	p, err := s.path(bucket, name)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, p, data, 0o644)
}

func (s *FS) CreateIfAbsent(ctx context.Context, bucket, name string, data []byte, contentType string) error {
	p, err := s.path(bucket, name)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s/%s: %w", bucket, name, ErrExists)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FS) Exists(ctx context.Context, bucket, name string) (bool, error) {
	p, err := s.path(bucket, name)
	if err != nil {
		return false, err
	}
	info, err := s.fs.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (s *FS) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	base, err := s.path(bucket, "_")
	if err != nil {
		return nil, err
	}
	base = filepath.Dir(base)

	var names []string
	err = afero.Walk(s.fs, base, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		if name := filepath.ToSlash(rel); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *FS) Delete(ctx context.Context, bucket, name string) error {
	p, err := s.path(bucket, name)
	if err != nil {
		return err
	}
	err = s.fs.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s/%s: %w", bucket, name, ErrNotExist)
	}
	return err
}
