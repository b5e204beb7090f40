// Package tablegen builds a types.RecordKeeper from record-language (.td)
// and HCL (.hcl) sources.
package tablegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/recordkeeper/internal/hclsrc"
	"github.com/mesh-intelligence/recordkeeper/internal/tdparse"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Source registration errors.
var (
	ErrAddSource  = errors.New("cannot add source")
	ErrAddInclude = errors.New("include path does not exist")
)

// parseMu serializes Parse calls across the process.
var parseMu sync.Mutex

// Option configures a Parser.
type Option func(*Parser)

// WithFs reads sources and includes from fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(p *Parser) { p.fs = fs }
}

// WithLogger sets the logger used for debug output. A nil logger selects
// slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

type source struct {
	name string
	text string
	file bool
}

// Parser collects sources and include directories and builds a keeper from
// them. A Parser is not safe for concurrent use; separate Parsers may be
// used from different goroutines, and their Parse calls run one at a time.
type Parser struct {
	fs          afero.Fs
	logger      *slog.Logger
	sources     []source
	includeDirs []string
}

// NewParser returns a parser with no sources.
func NewParser(opts ...Option) *Parser {
	p := &Parser{fs: afero.NewOsFs(), logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddSource adds an in-memory record-language buffer.
func (p *Parser) AddSource(text string) *Parser {
	name := fmt.Sprintf("<source %d>", len(p.sources))
	p.sources = append(p.sources, source{name: name, text: text})
	return p
}

// AddSourceFile adds a source file. Files ending in .hcl are read as HCL.
// Returns ErrAddSource if path is not a readable file.
func (p *Parser) AddSourceFile(path string) error {
	info, err := p.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", path, ErrAddSource, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrAddSource)
	}
	p.sources = append(p.sources, source{name: path, file: true})
	return nil
}

// AddIncludePath appends a directory to the include search list.
// Returns ErrAddInclude if dir does not exist.
func (p *Parser) AddIncludePath(dir string) error {
	ok, err := afero.DirExists(p.fs, dir)
	if err != nil || !ok {
		return fmt.Errorf("%s: %w", dir, ErrAddInclude)
	}
	p.includeDirs = append(p.includeDirs, dir)
	return nil
}

// Parse reads every source in the order added and returns the resulting
// keeper. On failure no keeper is returned and the error wraps
// types.ErrConstructionFailure together with the first diagnostic.
func (p *Parser) Parse(ctx context.Context) (*types.RecordKeeper, error) {
	parseMu.Lock()
	defer parseMu.Unlock()

	b := types.NewBuilder()
	td := tdparse.NewReader(b, p.fs, p.includeDirs, p.logger)
	hl := hclsrc.NewLoader(p.fs, p.logger)

	for _, src := range p.sources {
		var err error
		switch {
		case !src.file:
			err = td.ReadSource(ctx, src.name, src.text)
		case strings.EqualFold(filepath.Ext(src.name), ".hcl"):
			err = hl.LoadFile(ctx, b, src.name)
		default:
			err = td.ReadFile(ctx, src.name)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrConstructionFailure, err)
		}
	}

	k, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConstructionFailure, err)
	}
	p.logger.Debug("parsed records", "sources", len(p.sources),
		"classes", k.Classes().Len(), "defs", k.Defs().Len())
	return k, nil
}
