package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recordkeeper/internal/ctxlog"
	"github.com/mesh-intelligence/recordkeeper/pkg/tablegen"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// errNoSources is returned when a command has neither file arguments nor
// configured sources.
var errNoSources = errors.New("no source files: pass them as arguments or set sources in config.yaml")

// loadModel parses files with the resolved include directories. Without
// file arguments the sources listed in config.yaml are used. Any failure is
// a user error: the sources are wrong or missing.
func loadModel(cmd *cobra.Command, files []string) (*types.RecordKeeper, error) {
	if len(files) == 0 {
		files = resolved.sources
	}
	if len(files) == 0 {
		return nil, userError(errNoSources)
	}
	l := tablegen.FileLoader{
		IncludeDirs: resolved.includeDirs,
		Logger:      ctxlog.FromContext(cmd.Context()),
	}
	k, err := l.Load(cmd.Context(), files...)
	if err != nil {
		return nil, userError(err)
	}
	return k, nil
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printNames writes one name per line, or a JSON array in --json mode.
func printNames(w io.Writer, names []string) error {
	if flags.jsonMode {
		return printJSON(w, names)
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

func recordNames(recs []*types.Record) []string {
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name()
	}
	return names
}

// recordDoc is the structured form of a record printed by show.
type recordDoc struct {
	Name         string     `json:"name" yaml:"name"`
	Kind         string     `json:"kind" yaml:"kind"`
	Anonymous    bool       `json:"anonymous,omitempty" yaml:"anonymous,omitempty"`
	Location     string     `json:"location,omitempty" yaml:"location,omitempty"`
	Superclasses []string   `json:"superclasses" yaml:"superclasses"`
	Fields       []fieldDoc `json:"fields" yaml:"fields"`
}

type fieldDoc struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

func newRecordDoc(r *types.Record) recordDoc {
	doc := recordDoc{
		Name:         r.Name(),
		Kind:         "def",
		Anonymous:    r.IsAnonymous(),
		Superclasses: r.Superclasses(),
		Fields:       make([]fieldDoc, 0, r.NumFields()),
	}
	if r.IsClass() {
		doc.Kind = "class"
	}
	if r.Loc().IsKnown() {
		doc.Location = r.Loc().String()
	}
	for f := range r.Fields() {
		doc.Fields = append(doc.Fields, fieldDoc{
			Name:  f.Name(),
			Type:  f.Type().String(),
			Value: fmt.Sprint(f.Value()),
		})
	}
	return doc
}
