package stream

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Buffer size and nesting depth bounds.
const (
	MinBufferSize     = 1024
	MaxBufferSize     = 1048576
	DefaultBufferSize = 8192

	MinDepth     = 1
	MaxDepth     = 4096
	DefaultDepth = 512
)

// Options configures a reader.
// The zero value is not valid; start from DefaultOptions.
type Options struct {
	// BufferSize is the byte source fill buffer size in bytes.
	BufferSize int `yaml:"buffer_size"`

	// MaxDepth is the maximum container nesting depth the parser accepts.
	MaxDepth int `yaml:"max_depth"`

	// Path is an optional path expression. When set, reading becomes
	// filtering: only values selected by the path are produced.
	Path string `yaml:"path"`
}

// DefaultOptions returns the default reader configuration.
func DefaultOptions() Options {
	return Options{
		BufferSize: DefaultBufferSize,
		MaxDepth:   DefaultDepth,
	}
}

// WithBufferSize returns a copy of the options with the buffer size replaced.
func (o Options) WithBufferSize(n int) Options {
	o.BufferSize = n
	return o
}

// WithMaxDepth returns a copy of the options with the depth limit replaced.
func (o Options) WithMaxDepth(n int) Options {
	o.MaxDepth = n
	return o
}

// WithPath returns a copy of the options with the path expression replaced.
func (o Options) WithPath(path string) Options {
	o.Path = path
	return o
}

// Validate checks that every option lies in its allowed range.
func (o Options) Validate() error {
	if o.BufferSize < MinBufferSize || o.BufferSize > MaxBufferSize {
		return NewIOError(
			fmt.Sprintf("buffer size %d out of range [%d, %d]",
				o.BufferSize, MinBufferSize, MaxBufferSize), "", nil)
	}
	if o.MaxDepth < MinDepth || o.MaxDepth > MaxDepth {
		return NewIOError(
			fmt.Sprintf("max depth %d out of range [%d, %d]",
				o.MaxDepth, MinDepth, MaxDepth), "", nil)
	}
	return nil
}

// LoadOptions reads options from a YAML file. Fields absent from the
// file keep their defaults. The result is validated before returning.
func LoadOptions(path string) (Options, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Options{}, NewIOError("cannot read options file", path, err)
	}

	opts := DefaultOptions()
	if err := yaml.Unmarshal(content, &opts); err != nil {
		return Options{}, NewIOError("cannot decode options file", path, err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
