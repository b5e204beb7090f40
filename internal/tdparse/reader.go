// Package tdparse reads the record language into a types.Builder.
//
// The accepted subset covers classes with template arguments, named and
// anonymous defs, field declarations and lets, top-level let blocks and
// include. Values are integers, bits, strings, code, lists, dags and def
// references, plus anonymous class instantiation.
package tdparse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// ErrIncludeNotFound is returned when no include directory holds an
// included file.
var ErrIncludeNotFound = errors.New("include file not found")

// Reader reads sources into a builder, resolving includes on an afero
// filesystem. Each file is read at most once.
type Reader struct {
	fs          afero.Fs
	includeDirs []string
	eval        *Evaluator
	seen        map[string]bool
	logger      *slog.Logger
}

// NewReader returns a reader adding records to b.
func NewReader(b *types.Builder, fs afero.Fs, includeDirs []string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		fs:          fs,
		includeDirs: includeDirs,
		eval:        NewEvaluator(b),
		seen:        make(map[string]bool),
		logger:      logger,
	}
}

// ReadFile reads the file at path.
func (r *Reader) ReadFile(ctx context.Context, path string) error {
	key := filepath.Clean(path)
	if r.seen[key] {
		r.logger.Debug("skipping file already read", "path", key)
		return nil
	}
	r.seen[key] = true
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	r.logger.Debug("reading source file", "path", key, "bytes", len(data))
	return r.read(ctx, key, filepath.Dir(key), string(data))
}

// ReadSource reads an in-memory buffer. name labels locations; includes
// resolve against the include directories only.
func (r *Reader) ReadSource(ctx context.Context, name, src string) error {
	r.logger.Debug("reading source buffer", "name", name, "bytes", len(src))
	return r.read(ctx, name, "", src)
}

func (r *Reader) read(ctx context.Context, name, dir, src string) error {
	items, err := Parse(name, src)
	if err != nil {
		return err
	}
	return r.eval.Eval(ctx, items, func(inc *Include) error {
		path, err := r.resolve(dir, inc.Path)
		if err != nil {
			return types.WithLocation(err, inc.Loc)
		}
		r.logger.Debug("including file", "from", name, "path", path)
		return r.ReadFile(ctx, path)
	})
}

// resolve finds an include: relative to the including file first, then in
// each include directory in order.
func (r *Reader) resolve(dir, path string) (string, error) {
	var candidates []string
	if filepath.IsAbs(path) {
		candidates = []string{path}
	} else {
		if dir != "" {
			candidates = append(candidates, filepath.Join(dir, path))
		}
		for _, d := range r.includeDirs {
			candidates = append(candidates, filepath.Join(d, path))
		}
	}
	for _, c := range candidates {
		ok, err := afero.Exists(r.fs, c)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", c, err)
		}
		if ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("%q: %w", path, ErrIncludeNotFound)
}
