// Package options holds the knobs of rendering and deserialization and
// loads them from the environment.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Location is a timezone that decodes from an IANA name. The zero value
// means no timezone.
type Location struct {
	*time.Location
}

// Decode implements envdecode.Decoder.
func (l *Location) Decode(name string) error {
	if name == "" {
		l.Location = nil
		return nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", name, err)
	}

	l.Location = loc

	return nil
}

// String returns the IANA name, or "" when unset.
func (l Location) String() string {
	if l.Location == nil {
		return ""
	}

	return l.Location.String()
}

// Render configures the renderer.
type Render struct {
	// DecimalAsFloat renders decimals as JSON numbers instead of strings.
	DecimalAsFloat bool `env:"JSONAPI_DECIMAL_AS_FLOAT,default=false"`

	// RenderEmbeddedLinks renders the links of resource objects.
	RenderEmbeddedLinks bool `env:"JSONAPI_RENDER_EMBEDDED_LINKS,default=false"`

	// AssumeNaiveTimezone localizes date times without a zone. When unset
	// such values cannot be rendered.
	AssumeNaiveTimezone Location `env:"JSONAPI_ASSUME_NAIVE_TZ"`
}

// DefaultRender returns the options used when nothing is configured. It is
// the zero Render.
func DefaultRender() Render {
	return Render{}
}

// Deserialize configures the deserializer.
type Deserialize struct {
	// RequireCompleteAttributes rejects documents missing attributes that
	// are required on creation.
	RequireCompleteAttributes bool `env:"JSONAPI_REQUIRE_COMPLETE_ATTRIBUTES,default=false"`
}

// RenderFromEnv loads Render from the environment. Unset variables keep
// their defaults.
func RenderFromEnv() (Render, error) {
	r := DefaultRender()
	if err := decode(&r); err != nil {
		return DefaultRender(), err
	}

	return r, nil
}

// DeserializeFromEnv loads Deserialize from the environment.
func DeserializeFromEnv() (Deserialize, error) {
	var d Deserialize
	if err := decode(&d); err != nil {
		return Deserialize{}, err
	}

	return d, nil
}

// decode fills target from the environment. target must hold its defaults
// already, since nothing is touched when no variable is set.
func decode(target any) error {
	err := envdecode.Decode(target)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("options: %w", err)
	}

	return nil
}
