package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jsonapi-serde/options"
	"jsonapi-serde/serde"
)

type validateOptions struct {
	mapping  string
	complete bool
}

func newValidateCommand(c *cli) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate [OPTIONS] [DOCUMENT|-]",
		Short: "Validate a JSON:API document against a mapping file",
		Long: "Validate a JSON:API document against the resource types of a mapping file.\n" +
			"Rejected documents are answered with a JSON:API error document and exit status 1.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("complete") {
				env, err := options.DeserializeFromEnv()
				if err != nil {
					return err
				}

				opts.complete = env.RequireCompleteAttributes
			}

			return c.runValidate(args, opts)
		},
	}

	flags := cmd.Flags()
	addMappingFlag(cmd, flags, &opts.mapping)
	flags.BoolVar(&opts.complete, "complete", false, "Require attributes that are required on creation")

	return cmd
}

func (c *cli) runValidate(args []string, opts validateOptions) error {
	s, err := c.loadSchema(opts.mapping, nil)
	if err != nil {
		return err
	}

	data, err := c.readDocument(args)
	if err != nil {
		return err
	}

	doc, err := serde.DecodeJSON(data)
	if err != nil {
		return c.renderErrors(err)
	}

	var count int

	if isCollection(doc) {
		repr, derr := c.deserializer(s).DeserializeCollection(doc, opts.complete)
		count, err = len(repr.Data), derr
	} else {
		repr, derr := c.deserializer(s).DeserializeSingleton(doc, opts.complete)
		if repr.Data != nil {
			count = 1
		}

		err = derr
	}

	if err != nil {
		return c.renderErrors(err)
	}

	c.logger.WithField("resources", count).Info("document is valid")
	fmt.Fprintln(c.out, "ok")

	return nil
}
