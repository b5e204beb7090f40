package tablegen

import (
	"errors"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Excerpt renders the source line and column marker of the located
// diagnostic in err, reading the file it names from fs. A nil fs means the
// OS filesystem. Excerpt returns "" when err has no location or the file
// cannot be read.
func Excerpt(fs afero.Fs, err error) string {
	var se *types.SourceError
	if !errors.As(err, &se) || !se.Loc.IsKnown() {
		return ""
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, rerr := afero.ReadFile(fs, se.Loc.File)
	if rerr != nil {
		return ""
	}
	return se.Excerpt(string(data))
}

// Excerpt is like the package-level Excerpt but also resolves buffers added
// with AddSource.
func (p *Parser) Excerpt(err error) string {
	var se *types.SourceError
	if !errors.As(err, &se) {
		return ""
	}
	for _, src := range p.sources {
		if !src.file && src.name == se.Loc.File {
			return se.Excerpt(src.text)
		}
	}
	return Excerpt(p.fs, err)
}
