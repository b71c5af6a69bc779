package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jsonapi-serde/internal/analyze"
	"jsonapi-serde/internal/diagnostic"
	"jsonapi-serde/internal/mapping"
)

func newMappingCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Work with mapping files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newMappingCheckCommand(c),
		newMappingSchemaCommand(c),
		newMappingInitCommand(c),
	)

	return cmd
}

type checkOptions struct {
	verbose bool
}

func newMappingCheckCommand(c *cli) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [OPTIONS] FILE",
		Short: "Validate a mapping file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.runMappingCheck(args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Also list notes on implicit mappings")

	return cmd
}

func (c *cli) runMappingCheck(path string, opts checkOptions) error {
	mf, err := mapping.LoadFile(path)
	if err != nil {
		return err
	}

	diags := mapping.Validate(mf, nil)

	report := func(list []diagnostic.Diagnostic) {
		for _, d := range list {
			fmt.Fprintf(c.out, "%s: %s\n", d.Severity, d)
		}
	}

	report(diags.Errors)
	report(diags.Warnings)

	if opts.verbose {
		report(diags.Infos)
	}

	if diags.HasErrors() {
		fmt.Fprintf(c.out, "%s: %d error(s)\n", path, len(diags.Errors))
		return &exitError{code: 1}
	}

	fmt.Fprintf(c.out, "%s: ok\n", path)

	return nil
}

func newMappingSchemaCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of mapping files",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			data, err := mapping.JSONSchemaBytes()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.out, string(data))

			return err
		},
	}
}

type initOptions struct {
	dir    string
	output string
}

func newMappingInitCommand(c *cli) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [OPTIONS] PACKAGE [STRUCT...]",
		Short: "Derive a mapping file from Go struct types",
		Long: "Load a Go package and derive a mapping file skeleton from the named structs,\n" +
			"or from every struct with an ID field. Pointers to and slices of other such\n" +
			"structs become relationships.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.runMappingInit(args[0], args[1:], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.dir, "dir", "", "Directory the package pattern is resolved in")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the mapping file here instead of standard output")

	return cmd
}

func (c *cli) runMappingInit(pattern string, structs []string, opts initOptions) error {
	analyzer := analyze.NewAnalyzer()
	analyzer.Dir = opts.dir

	graph, err := analyzer.LoadPackages(pattern)
	if err != nil {
		return err
	}

	mf, err := analyze.NewScaffolder(graph).Scaffold(structs...)
	if err != nil {
		return err
	}

	c.logger.WithField("resources", len(mf.Resources)).Info("mapping derived")

	if opts.output != "" {
		return mapping.WriteFile(mf, opts.output)
	}

	data, err := mapping.Marshal(mf)
	if err != nil {
		return err
	}

	_, err = c.out.Write(data)

	return err
}
