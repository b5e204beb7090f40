package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes [file]...",
		Short: "List class names in definition order",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadModel(cmd, args)
			if err != nil {
				return err
			}
			return printNames(cmd.OutOrStdout(), k.Classes().Keys())
		},
	}
}

func newDefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defs [file]...",
		Short: "List def names in definition order",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadModel(cmd, args)
			if err != nil {
				return err
			}
			return printNames(cmd.OutOrStdout(), k.Defs().Keys())
		},
	}
}

func newDerivedCmd() *cobra.Command {
	var class string
	cmd := &cobra.Command{
		Use:   "derived [file]... --class NAME",
		Short: "List the defs deriving from a class",
		Long:  "List the defs deriving from a class, in definition order. An unknown\nclass lists nothing.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadModel(cmd, args)
			if err != nil {
				return err
			}
			return printNames(cmd.OutOrStdout(), recordNames(k.AllDerivedDefinitions(class)))
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "class name")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

func newShowCmd() *cobra.Command {
	var def, class string
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "show [file]... (--def NAME | --class NAME)",
		Short: "Print one record",
		Long: "Print one record in its debug form, or as YAML or JSON with --yaml or\n" +
			"--json.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadModel(cmd, args)
			if err != nil {
				return err
			}

			var r *types.Record
			if def != "" {
				r, err = k.Def(def)
			} else {
				r, err = k.Class(class)
			}
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					return userError(err)
				}
				return sysError(err)
			}

			out := cmd.OutOrStdout()
			switch {
			case flags.jsonMode:
				return printJSON(out, newRecordDoc(r))
			case asYAML:
				data, err := yaml.Marshal(newRecordDoc(r))
				if err != nil {
					return sysError(fmt.Errorf("marshal output: %w", err))
				}
				_, err = out.Write(data)
				return err
			}
			return types.RenderRecord(out, r)
		},
	}
	cmd.Flags().StringVar(&def, "def", "", "def name")
	cmd.Flags().StringVar(&class, "class", "", "class name")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output as YAML")
	cmd.MarkFlagsMutuallyExclusive("def", "class")
	cmd.MarkFlagsOneRequired("def", "class")
	return cmd
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [file]...",
		Short: "Print every class and def",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadModel(cmd, args)
			if err != nil {
				return err
			}
			if err := types.RenderKeeper(cmd.OutOrStdout(), k); err != nil {
				return sysError(err)
			}
			return nil
		},
	}
}
