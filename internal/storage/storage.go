// Package storage is the object store the job controller works against.
// Paths are flat object names within a bucket; directories exist only as
// name prefixes.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotExist is returned when a read or delete targets a missing object.
	ErrNotExist = errors.New("object does not exist")
	// ErrExists is returned by CreateIfAbsent when the object is already there.
	ErrExists = errors.New("object already exists")
)

type Storage interface {
	Read(ctx context.Context, bucket, name string) ([]byte, error)
	Write(ctx context.Context, bucket, name string, data []byte, contentType string) error
	// CreateIfAbsent writes the object only if it does not exist yet. The
	// check and the write are a single atomic step.
	CreateIfAbsent(ctx context.Context, bucket, name string, data []byte, contentType string) error
	Exists(ctx context.Context, bucket, name string) (bool, error)
	// List returns the names of all objects starting with prefix, sorted.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Delete(ctx context.Context, bucket, name string) error
}
