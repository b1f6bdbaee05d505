// Package jetstream provides a pull-style streaming JSON reader that
// processes arbitrarily large documents in bounded memory. Data can be
// materialized in full, consumed as a lazy sequence of container
// elements, or filtered by a path expression evaluated during parsing.
package jetstream

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/shapestone/jetstream/internal/bytesource"
	"github.com/shapestone/jetstream/internal/lexer"
	"github.com/shapestone/jetstream/internal/parser"
	"github.com/shapestone/jetstream/internal/path"
	"github.com/shapestone/jetstream/pkg/stream"
	"github.com/shapestone/jetstream/pkg/value"
)

// Reader is the façade binding a byte source, lexer and parser under one
// configuration. A reader is consumed once: iteration over a
// non-seekable stream is not restartable.
//
// Exactly one live reader owns the close responsibility for the
// underlying stream; reconfiguration transfers that ownership to the
// new instance and inactivates the origin.
type Reader struct {
	id   uuid.UUID
	opts stream.Options

	raw    io.Reader
	closer io.Closer // non-nil when the reader owns the stream
	file   string    // for error context, may be empty

	src *bytesource.Source
	lex *lexer.Lexer
	par *parser.Parser

	pathExpr *path.Expression // nil when no path is configured

	itemsProcessed int64
	closed         bool
	transferred    bool // ownership moved to a reconfigured reader
}

// Stats is a snapshot of reader progress counters.
type Stats struct {
	ReaderID       uuid.UUID
	ItemsProcessed int64
	BytesRead      int64
	Depth          int
}

// New creates a reader from a string or an io.Reader.
// Any other input is a programmer error.
func New(input interface{}) (*Reader, error) {
	switch in := input.(type) {
	case string:
		return FromString(in)
	case io.Reader:
		return FromReader(in)
	}
	return nil, stream.NewArgumentError("input must be a string or an io.Reader")
}

// FromString creates a reader over an in-memory document.
func FromString(document string) (*Reader, error) {
	return build(strings.NewReader(document), nil, "", stream.DefaultOptions())
}

// FromReader creates a reader borrowing the given stream. The caller
// keeps the close responsibility.
func FromReader(r io.Reader) (*Reader, error) {
	if r == nil {
		return nil, stream.NewArgumentError("reader must not be nil")
	}
	return build(r, nil, "", stream.DefaultOptions())
}

// FromFile creates a reader owning the named file. Files ending in .gz
// are decompressed transparently.
func FromFile(filePath string) (*Reader, error) {
	return FromFileOptions(filePath, stream.DefaultOptions())
}

// FromFileOptions creates a reader owning the named file with explicit
// options.
func FromFileOptions(filePath string, opts stream.Options) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, stream.NewIOError("cannot open file", filePath, err)
	}

	var raw io.Reader = file
	closer := io.Closer(file)

	if strings.HasSuffix(filePath, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, stream.NewIOError("cannot open gzip stream", filePath, err)
		}
		raw = gz
		closer = &gzipCloser{gz: gz, file: file}
	}

	r, err := build(raw, closer, filePath, opts)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return r, nil
}

// gzipCloser closes the gzip layer and the file beneath it.
type gzipCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (c *gzipCloser) Close() error {
	gzErr := c.gz.Close()
	fileErr := c.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// build assembles the source, lexer and parser for one configuration.
func build(raw io.Reader, closer io.Closer, file string, opts stream.Options) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var expr *path.Expression
	if opts.Path != "" {
		var err error
		expr, err = path.Compile(opts.Path)
		if err != nil {
			return nil, err
		}
	}

	src, err := bytesource.New(raw, opts.BufferSize)
	if err != nil {
		return nil, err
	}

	lex := lexer.New(src)
	return &Reader{
		id:       uuid.New(),
		opts:     opts,
		raw:      raw,
		closer:   closer,
		file:     file,
		src:      src,
		lex:      lex,
		par:      parser.New(lex, opts.MaxDepth),
		pathExpr: expr,
	}, nil
}

// reconfigure builds a new reader over the same stream and transfers
// ownership to it. The origin's Close becomes inert.
func (r *Reader) reconfigure(opts stream.Options) (*Reader, error) {
	next, err := build(r.raw, r.closer, r.file, opts)
	if err != nil {
		return nil, err
	}
	r.transferred = true
	return next, nil
}

// WithBufferSize returns a new reader over the same stream with the
// buffer size replaced. The origin reader is invalidated.
func (r *Reader) WithBufferSize(n int) (*Reader, error) {
	return r.reconfigure(r.opts.WithBufferSize(n))
}

// WithMaxDepth returns a new reader over the same stream with the depth
// limit replaced. The origin reader is invalidated.
func (r *Reader) WithMaxDepth(n int) (*Reader, error) {
	return r.reconfigure(r.opts.WithMaxDepth(n))
}

// WithPath returns a new reader over the same stream with the path
// expression replaced. The origin reader is invalidated.
func (r *Reader) WithPath(pathText string) (*Reader, error) {
	return r.reconfigure(r.opts.WithPath(pathText))
}

// Options returns the reader configuration.
func (r *Reader) Options() stream.Options {
	return r.opts
}

// ID returns the reader identity. Iterator views carry it so progress
// can be attributed when several readers are live.
func (r *Reader) ID() uuid.UUID {
	return r.id
}

// usable verifies the reader still owns its stream and is not closed.
func (r *Reader) usable() error {
	if r.closed {
		return stream.NewIOError("reader is closed", r.file, nil)
	}
	if r.transferred {
		return stream.NewIOError("reader was reconfigured; use the new instance", r.file, nil)
	}
	return nil
}

// ReadAll materializes the document. With a path configured it returns
// the first match, or null when nothing matches.
func (r *Reader) ReadAll() (value.Value, error) {
	if err := r.usable(); err != nil {
		return value.Null(), err
	}

	if r.pathExpr == nil {
		v, err := r.par.ParseValue()
		if err != nil {
			return value.Null(), err
		}
		r.itemsProcessed++
		return v, nil
	}

	matches, err := r.readMatches(1)
	if err != nil {
		return value.Null(), err
	}
	if len(matches) == 0 {
		return value.Null(), nil
	}
	return matches[0], nil
}

// ReadAllMatches materializes every path match. Without a path it
// returns the whole document as a single match.
func (r *Reader) ReadAllMatches() ([]value.Value, error) {
	if err := r.usable(); err != nil {
		return nil, err
	}

	if r.pathExpr == nil {
		v, err := r.par.ParseValue()
		if err != nil {
			return nil, err
		}
		r.itemsProcessed++
		return []value.Value{v}, nil
	}
	return r.readMatches(-1)
}

// readMatches collects path matches, streaming when the expression
// permits it. limit < 0 collects everything.
func (r *Reader) readMatches(limit int) ([]value.Value, error) {
	if r.pathExpr.CanUseSimpleStreaming() {
		ms := r.par.MatchStream(path.NewEvaluator(r.pathExpr))
		var out []value.Value
		for ms.Next() {
			out = append(out, ms.Value())
			r.itemsProcessed++
			if limit >= 0 && len(out) >= limit {
				return out, nil
			}
		}
		return out, ms.Err()
	}

	root, err := r.par.ParseValue()
	if err != nil {
		return nil, err
	}
	r.itemsProcessed++

	matches := path.Apply(r.pathExpr, root)
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Depth returns the parser's current nesting level.
func (r *Reader) Depth() int {
	return r.par.Depth()
}

// Stats returns a snapshot of the reader's progress counters.
func (r *Reader) Stats() Stats {
	return Stats{
		ReaderID:       r.id,
		ItemsProcessed: r.itemsProcessed,
		BytesRead:      r.src.BytesRead(),
		Depth:          r.par.Depth(),
	}
}

// Reset repositions a seekable stream to byte 0 and rebinds the lexer
// and parser. Non-seekable streams are left untouched.
func (r *Reader) Reset() error {
	if err := r.usable(); err != nil {
		return err
	}
	if err := r.src.Reset(); err != nil {
		return err
	}
	r.lex = lexer.New(r.src)
	r.par = parser.New(r.lex, r.opts.MaxDepth)
	return nil
}

// Close releases the underlying stream when this reader owns it.
// Closing is idempotent; closing a reconfigured origin is a no-op.
func (r *Reader) Close() error {
	if r.closed || r.transferred {
		r.closed = true
		return nil
	}
	r.closed = true
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			return stream.NewIOError("close failed", r.file, err)
		}
	}
	return nil
}
