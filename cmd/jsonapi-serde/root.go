package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"jsonapi-serde/internal/mapping"
	"jsonapi-serde/mapper"
	"jsonapi-serde/options"
	"jsonapi-serde/serde"
)

// exitError ends the process with code once its report was written.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type cli struct {
	in       io.Reader
	out, err io.Writer
	logger   *logrus.Logger

	logLevel  string
	logFormat string
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, err: errOut, logger: logrus.New()}
	c.logger.SetOutput(errOut)

	cmd := &cobra.Command{
		Use:           "jsonapi-serde",
		Short:         "Check and normalize JSON:API documents against a mapping file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.setupLogger()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.logLevel, "log-level", "warning", "Log level (trace, debug, info, warning, error)")
	flags.StringVar(&c.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(
		newMappingCommand(c),
		newValidateCommand(c),
		newNormalizeCommand(c),
	)

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cmd
}

func (c *cli) setupLogger() error {
	lvl, err := logrus.ParseLevel(c.logLevel)
	if err != nil {
		return errors.Wrapf(err, "unable to parse logging level %s", c.logLevel)
	}

	c.logger.SetLevel(lvl)

	switch c.logFormat {
	case "text":
		c.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		c.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", c.logFormat)
	}

	return nil
}

// addMappingFlag registers the --mapping flag of commands that load a
// mapping file.
func addMappingFlag(cmd *cobra.Command, flags *pflag.FlagSet, target *string) {
	flags.StringVarP(target, "mapping", "m", "", "Mapping file")
	_ = cmd.MarkFlagRequired("mapping")
}

// loadSchema reads, validates and builds a mapping file. Validation notes
// are logged.
func (c *cli) loadSchema(path string, endpoints mapper.EndpointResolver) (*mapping.Schema, error) {
	mf, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	diags := mapping.Validate(mf, nil)
	for _, w := range diags.Warnings {
		c.logger.WithField("code", w.Code).Warn(w.String())
	}

	for _, i := range diags.Infos {
		c.logger.WithField("code", i.Code).Debug(i.String())
	}

	return mapping.Build(mf, nil, endpoints, mapper.WithLogger(c.logger))
}

// readDocument reads the named file, or standard input for "-" or no name.
func (c *cli) readDocument(args []string) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(c.in)
	} else {
		data, err = os.ReadFile(args[0])
	}

	if err != nil {
		return nil, errors.Wrap(err, "reading document")
	}

	return data, nil
}

func (c *cli) deserializer(s *mapping.Schema) *serde.Deserializer {
	return serde.NewDeserializer(s.Context.DescriptorQuerier(), serde.WithDeserializerLogger(c.logger))
}

// isCollection reports whether the primary data of doc is an array.
func isCollection(doc any) bool {
	obj, ok := doc.(map[string]any)
	if !ok {
		return false
	}

	_, ok = obj["data"].([]any)

	return ok
}

func (c *cli) render(doc serde.Document) error {
	opts, err := options.RenderFromEnv()
	if err != nil {
		return err
	}

	out, err := serde.NewRenderer(opts).RenderJSON(doc)
	if err != nil {
		return errors.Wrap(err, "rendering document")
	}

	_, err = fmt.Fprintln(c.out, string(out))

	return err
}

// renderErrors writes the JSON:API error document of err and fails with
// exit status 1.
func (c *cli) renderErrors(err error) error {
	c.logger.WithError(err).Debug("document rejected")

	doc := serde.SingletonDocumentRepr{DocumentCommon: serde.DocumentCommon{Errors: mapper.ToErrorReprs(err)}}
	if rerr := c.render(&doc); rerr != nil {
		return rerr
	}

	return &exitError{code: 1}
}
