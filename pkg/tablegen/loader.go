package tablegen

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Loader produces a keeper from a set of source paths.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*types.RecordKeeper, error)
}

// FileLoader loads source files with a Parser.
type FileLoader struct {
	IncludeDirs []string
	Fs          afero.Fs     // nil means the OS filesystem
	Logger      *slog.Logger // nil means slog.Default()
}

var _ Loader = FileLoader{}

// Load parses paths in order. Include directories are registered before
// any source.
func (l FileLoader) Load(ctx context.Context, paths ...string) (*types.RecordKeeper, error) {
	var opts []Option
	if l.Fs != nil {
		opts = append(opts, WithFs(l.Fs))
	}
	if l.Logger != nil {
		opts = append(opts, WithLogger(l.Logger))
	}
	p := NewParser(opts...)
	for _, dir := range l.IncludeDirs {
		if err := p.AddIncludePath(dir); err != nil {
			return nil, err
		}
	}
	for _, path := range paths {
		if err := p.AddSourceFile(path); err != nil {
			return nil, err
		}
	}
	return p.Parse(ctx)
}
