package converter

import (
	"fmt"

	"go.uber.org/multierr"

	"jsonapi-serde/jsonpointer"
)

// ValidationError reports a value that could not be converted, located by
// a JSON pointer into the input.
type ValidationError struct {
	Pointer jsonpointer.Pointer
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pointer)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Context decides what happens when a validation error occurs.
type Context interface {
	// Stopped reports whether remaining elements of the current collection
	// or record should be skipped.
	Stopped() bool

	// ValidationErrorOccurred is called for every validation error. A non-nil
	// return aborts the conversion with that error.
	ValidationErrorOccurred(err *ValidationError) error
}

// FailFastContext aborts on the first validation error.
type FailFastContext struct{}

func (FailFastContext) Stopped() bool { return false }

func (FailFastContext) ValidationErrorOccurred(err *ValidationError) error {
	return err
}

// CollectingContext records every validation error and lets the conversion
// continue.
type CollectingContext struct {
	errs []*ValidationError
}

// NewCollectingContext returns an empty CollectingContext.
func NewCollectingContext() *CollectingContext {
	return &CollectingContext{}
}

func (c *CollectingContext) Stopped() bool { return false }

func (c *CollectingContext) ValidationErrorOccurred(err *ValidationError) error {
	c.errs = append(c.errs, err)
	return nil
}

// Errors returns the collected errors in occurrence order.
func (c *CollectingContext) Errors() []*ValidationError {
	return c.errs
}

// Err combines the collected errors, or returns nil if there are none.
func (c *CollectingContext) Err() error {
	var err error
	for _, e := range c.errs {
		err = multierr.Append(err, e)
	}

	return err
}

// countingContext counts the validation errors reported through it.
type countingContext struct {
	Context
	count int
}

func (c *countingContext) ValidationErrorOccurred(err *ValidationError) error {
	c.count++
	return c.Context.ValidationErrorOccurred(err)
}

func (c *countingContext) Unwrap() Context { return c.Context }

// AsContext finds the first context in the chain of ctx that is a T. The
// converter wraps contexts while descending; wrappers expose the context
// they wrap with an Unwrap() Context method.
func AsContext[T Context](ctx Context) (T, bool) {
	for ctx != nil {
		if t, ok := ctx.(T); ok {
			return t, true
		}

		u, ok := ctx.(interface{ Unwrap() Context })
		if !ok {
			break
		}

		ctx = u.Unwrap()
	}

	var zero T

	return zero, false
}
