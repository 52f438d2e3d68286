package record

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Kind names one of the four tabular record kinds produced by the
// extraction pipeline.
type Kind string

const (
	KindEntities      Kind = "entities"
	KindRelationships Kind = "relationships"
	KindCommunities   Kind = "communities"
	KindDocuments     Kind = "documents"
)

// Filename returns the batch file name for the kind within a source.
func (k Kind) Filename() string {
	return string(k) + ".csv"
}

// Row is one tabular input row: a mapping from header field name to the raw
// string value, plus the line number for error reporting.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of a field, or "" when absent.
func (r Row) Get(field string) string {
	return r.Fields[field]
}

// Source provides one reader per record kind. Open returns fs.ErrNotExist
// when the source has no batch for the kind; callers treat that as an empty
// batch.
type Source interface {
	Open(ctx context.Context, kind Kind) (io.ReadCloser, error)
}

// DirSource reads batch files from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Open(ctx context.Context, kind Kind) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Dir, kind.Filename()))
}

// FetchFunc retrieves the raw bytes of one object by key. fs.ErrNotExist
// signals a missing object.
type FetchFunc func(ctx context.Context, key string) ([]byte, error)

// FetchSource reads batch files through a FetchFunc, keyed by prefix plus
// the kind's file name. Used for object-storage backed sources.
type FetchSource struct {
	Prefix string
	Fetch  FetchFunc
}

func (s FetchSource) Open(ctx context.Context, kind Kind) (io.ReadCloser, error) {
	key := kind.Filename()
	if s.Prefix != "" {
		key = s.Prefix + "/" + key
	}
	data, err := s.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// IsNotExist reports whether an Open error means the batch file is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
