package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Diagnostics holds all diagnostic information from validation.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Resource names the resource type this relates to (if any).
	Resource string
	// Path locates the offending entry in the file, e.g.
	// "resources[0].attributes[2].type".
	Path string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return "unknown"
	}
}

func (d *Diagnostics) add(list *[]Diagnostic, sev DiagnosticSeverity, code, message, resource, path string, suggestions []string) {
	*list = append(*list, Diagnostic{
		Severity:    sev,
		Code:        code,
		Message:     message,
		Resource:    resource,
		Path:        path,
		Suggestions: suggestions,
	})
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, resource, path string, suggestions ...string) {
	d.add(&d.Errors, DiagnosticError, code, message, resource, path, suggestions)
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, resource, path string, suggestions ...string) {
	d.add(&d.Warnings, DiagnosticWarning, code, message, resource, path, suggestions)
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, resource, path string) {
	d.add(&d.Infos, DiagnosticInfo, code, message, resource, path, nil)
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Codes returns the codes of the error diagnostics in order.
func (d *Diagnostics) Codes() []string {
	codes := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		codes[i] = e.Code
	}

	return codes
}

// Error combines all error diagnostics into one error, or returns nil if
// valid. multierr.Errors recovers the individual diagnostics.
func (d *Diagnostics) Error() error {
	var err error

	for _, e := range d.Errors {
		err = multierr.Append(err, errors.New(e.String()))
	}

	return err
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Resource != "" {
		prefix = append(prefix, "["+d.Resource+"]")
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		quoted := make([]string, len(d.Suggestions))
		for i, s := range d.Suggestions {
			quoted[i] = fmt.Sprintf("%q", s)
		}

		msg += " (did you mean " + strings.Join(quoted, " or ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
