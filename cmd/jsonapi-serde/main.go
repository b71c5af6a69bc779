// Package main provides the CLI entrypoint for jsonapi-serde.
//
// jsonapi-serde checks JSON:API documents against resource types declared
// in a YAML mapping file:
//   - mapping check: validate a mapping file
//   - mapping schema: print the JSON Schema of mapping files
//   - mapping init: derive a mapping file from Go struct types
//   - validate: deserialize a document and report JSON:API errors
//   - normalize: map a document onto native records and render it back
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line args and returns the exit status: 0 on
// success, 1 when a checked input was rejected and 2 on usage or I/O
// errors.
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	cmd := newRootCommand(in, out, errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintln(errOut, "Error:", err)

	return 2
}
