// Package cli implements the keeper command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recordkeeper/internal/ctxlog"
	"github.com/mesh-intelligence/recordkeeper/internal/paths"
	"github.com/mesh-intelligence/recordkeeper/pkg/recordkeeper"
	"github.com/mesh-intelligence/recordkeeper/pkg/tablegen"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func userError(err error) error { return &ExitError{Code: exitUserError, Err: err} }

func sysError(err error) error { return &ExitError{Code: exitSysError, Err: err} }

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	includes  []string
	jsonMode  bool
}

var flags rootFlags

// resolved holds settings derived from flags, environment and config.yaml
// by the root command before any subcommand runs.
var resolved struct {
	configDir   string
	includeDirs []string
	sources     []string
}

// NewRootCmd creates the top-level "keeper" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keeper",
		Short: "Inspect record models",
		Long: "Keeper loads record-language (.td) and HCL (.hcl) sources into a record\n" +
			"model and answers queries about its classes and defs.",
		Version:           recordkeeper.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringSliceVarP(&flags.includes, "include", "I", nil, "include directory, searched in order (repeatable)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newClassesCmd())
	root.AddCommand(newDefsCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newDerivedCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newExportCmd())

	return root
}

// Execute runs the root command against the process arguments and exits
// with the matching code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command line args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "keeper:", err)
	fmt.Fprint(stderr, tablegen.Excerpt(nil, err))
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitUserError
}

// setup resolves the config directory, loads config.yaml and installs the
// configured logger in the command context.
func setup(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	resolved.configDir = configDir

	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return userError(err)
	}

	logger := newLogger(cfg.GetString(cfgKeyLogLevel), cfg.GetString(cfgKeyLogFormat), cmd.ErrOrStderr())
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

	configured := relativeTo(configDir, cfg.GetStringSlice(cfgKeyIncludeDirs))
	resolved.includeDirs, err = paths.ResolveIncludeDirs(flags.includes, configured)
	if err != nil {
		return sysError(fmt.Errorf("resolve include dirs: %w", err))
	}
	resolved.sources = relativeTo(configDir, cfg.GetStringSlice(cfgKeySources))
	logger.Debug("configuration loaded", "config_dir", configDir,
		"config_file", cfg.ConfigFileUsed(), "include_dirs", resolved.includeDirs,
		"sources", len(resolved.sources))
	return nil
}

// relativeTo joins every relative path in list to dir.
func relativeTo(dir string, list []string) []string {
	out := make([]string, len(list))
	for i, p := range list {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		out[i] = p
	}
	return out
}
