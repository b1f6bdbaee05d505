package jetstream

import (
	"github.com/shapestone/jetstream/internal/lexer"
	"github.com/shapestone/jetstream/internal/parser"
	"github.com/shapestone/jetstream/internal/path"
	"github.com/shapestone/jetstream/pkg/stream"
	"github.com/shapestone/jetstream/pkg/value"
)

// elemSource is the pull contract shared by the parser's lazy streams.
type elemSource interface {
	Next() bool
	Value() value.Value
	Err() error
}

// materializedSource iterates matches that required a full parse:
// root-only paths, recursive descent and multi-selector expressions.
type materializedSource struct {
	r       *Reader
	init    bool
	matches []value.Value
	pos     int
	current value.Value
	err     error
}

func (m *materializedSource) Next() bool {
	if m.err != nil {
		return false
	}
	if !m.init {
		m.init = true
		root, err := m.r.par.ParseValue()
		if err != nil {
			m.err = err
			return false
		}
		m.matches = path.Apply(m.r.pathExpr, root)
	}
	if m.pos >= len(m.matches) {
		return false
	}
	m.current = m.matches[m.pos]
	m.pos++
	return true
}

func (m *materializedSource) Value() value.Value { return m.current }
func (m *materializedSource) Err() error         { return m.err }

// matchSource returns the element source honoring the reader's path:
// the streaming match stream when the expression permits it, the
// materializing fallback otherwise, and nil when no path is set.
func (r *Reader) matchSource() elemSource {
	if r.pathExpr == nil {
		return nil
	}
	if r.pathExpr.CanUseSimpleStreaming() {
		return r.par.MatchStream(path.NewEvaluator(r.pathExpr))
	}
	return &materializedSource{r: r}
}

//
// ArrayIterator
//

// ArrayIterator is a single-pass view over the elements of a top-level
// array, or over path matches when the reader has a path configured.
type ArrayIterator struct {
	r       *Reader
	src     elemSource
	skip    int
	limit   int // -1 means unlimited
	started bool
	index   int
	current value.Value
	err     error
}

// ReadArray returns the array iterator view.
func (r *Reader) ReadArray() *ArrayIterator {
	it := &ArrayIterator{r: r, limit: -1, index: -1}
	if err := r.usable(); err != nil {
		it.err = err
		return it
	}
	if src := r.matchSource(); src != nil {
		it.src = src
	} else {
		it.src = r.par.ArrayStream()
	}
	return it
}

// Skip discards the first n elements. Effective only before iteration
// begins.
func (it *ArrayIterator) Skip(n int) *ArrayIterator {
	if !it.started && n > 0 {
		it.skip = n
	}
	return it
}

// Limit caps the number of yielded elements. Effective only before
// iteration begins.
func (it *ArrayIterator) Limit(n int) *ArrayIterator {
	if !it.started && n >= 0 {
		it.limit = n
	}
	return it
}

// Next advances to the next element. It returns false at the end of the
// sequence, at the configured limit, or on error.
func (it *ArrayIterator) Next() bool {
	if it.err != nil {
		return false
	}

	if !it.started {
		it.started = true
		for i := 0; i < it.skip; i++ {
			if !it.src.Next() {
				it.err = it.src.Err()
				return false
			}
		}
	}

	if it.limit >= 0 && it.index+1 >= it.limit {
		return false
	}
	if !it.src.Next() {
		it.err = it.src.Err()
		return false
	}

	it.index++
	it.current = it.src.Value()
	it.r.itemsProcessed++
	return true
}

// Value returns the element produced by the last successful Next.
func (it *ArrayIterator) Value() value.Value {
	return it.current
}

// Index returns the 0-based position of the current element within the
// yielded sequence.
func (it *ArrayIterator) Index() int {
	return it.index
}

// ToArray drains the remaining elements into a slice.
func (it *ArrayIterator) ToArray() ([]value.Value, error) {
	var out []value.Value
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

// Count returns the number of elements, which is unknown in streaming
// mode: always -1.
func (it *ArrayIterator) Count() int {
	return -1
}

// Rewind is a no-op once iteration has begun.
func (it *ArrayIterator) Rewind() *ArrayIterator {
	return it
}

// Err returns the first error encountered, if any.
func (it *ArrayIterator) Err() error {
	return it.err
}

//
// ObjectIterator
//

type member struct {
	key string
	val value.Value
}

// ObjectIterator is a single-pass view over the members of a top-level
// object, yielded in source order. Has and Get advance the underlying
// stream and cache every member passed over, so iteration afterwards
// still sees them.
type ObjectIterator struct {
	r       *Reader
	s       *parser.ObjectStream
	queue   []member // members consumed by lookups, not yet yielded
	qpos    int
	seen    map[string]value.Value
	started bool
	index   int
	key     string
	current value.Value
	err     error
}

// ReadObject returns the object iterator view.
func (r *Reader) ReadObject() *ObjectIterator {
	it := &ObjectIterator{
		r:     r,
		seen:  make(map[string]value.Value),
		index: -1,
	}
	if err := r.usable(); err != nil {
		it.err = err
		return it
	}
	it.s = r.par.ObjectStream()
	return it
}

// Next advances to the next member, draining lookup-cached members
// first.
func (it *ObjectIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.started = true

	if it.qpos < len(it.queue) {
		m := it.queue[it.qpos]
		it.qpos++
		it.key = m.key
		it.current = m.val
		it.index++
		it.r.itemsProcessed++
		return true
	}

	if !it.s.Next() {
		it.err = it.s.Err()
		return false
	}
	it.key = it.s.Key()
	it.current = it.s.Value()
	it.seen[it.key] = it.current
	it.index++
	it.r.itemsProcessed++
	return true
}

// Key returns the member key produced by the last successful Next.
func (it *ObjectIterator) Key() string {
	return it.key
}

// Value returns the member value produced by the last successful Next.
func (it *ObjectIterator) Value() value.Value {
	return it.current
}

// Index returns the 0-based position of the current member.
func (it *ObjectIterator) Index() int {
	return it.index
}

// Has reports whether the object contains key, advancing the stream
// until the key is found or the object ends.
func (it *ObjectIterator) Has(key string) (bool, error) {
	_, ok, err := it.lookup(key)
	return ok, err
}

// Get returns the member value for key, or def when the key is absent.
// The stream advances until the key is found or the object ends.
func (it *ObjectIterator) Get(key string, def value.Value) (value.Value, error) {
	v, ok, err := it.lookup(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// lookup consults the member cache, then pulls members off the stream
// caching each one until the key turns up or the object is exhausted.
func (it *ObjectIterator) lookup(key string) (value.Value, bool, error) {
	if it.err != nil {
		return value.Null(), false, it.err
	}
	if v, ok := it.seen[key]; ok {
		return v, true, nil
	}

	for it.s.Next() {
		k, v := it.s.Key(), it.s.Value()
		it.queue = append(it.queue, member{key: k, val: v})
		it.seen[k] = v
		if k == key {
			return v, true, nil
		}
	}
	if err := it.s.Err(); err != nil {
		it.err = err
		return value.Null(), false, err
	}
	return value.Null(), false, nil
}

// Rewind is a no-op once iteration has begun.
func (it *ObjectIterator) Rewind() *ObjectIterator {
	return it
}

// Err returns the first error encountered, if any.
func (it *ObjectIterator) Err() error {
	return it.err
}

//
// ItemIterator
//

type itemMode uint8

const (
	itemModeArray itemMode = iota
	itemModeObject
	itemModeScalar
	itemModeMatch
)

// ItemIterator is a single-pass view over a document's top-level items.
// The first structural token decides the dispatch: objects yield keyed
// members, arrays yield indexed elements, scalars yield exactly one
// item with an empty key. With a path configured it yields the matches.
type ItemIterator struct {
	r    *Reader
	mode itemMode

	as  *parser.ArrayStream
	os  *parser.ObjectStream
	src elemSource

	scalarDone bool
	index      int
	key        string
	current    value.Value
	err        error
}

// ReadItems returns the item iterator view.
func (r *Reader) ReadItems() *ItemIterator {
	it := &ItemIterator{r: r, index: -1}
	if err := r.usable(); err != nil {
		it.err = err
		return it
	}

	if src := r.matchSource(); src != nil {
		it.mode = itemModeMatch
		it.src = src
		return it
	}

	tok, err := r.lex.Peek()
	if err != nil {
		it.err = err
		return it
	}
	switch tok.Kind {
	case lexer.TokenLBrace:
		it.mode = itemModeObject
		it.os = r.par.ObjectStream()
	case lexer.TokenLBracket:
		it.mode = itemModeArray
		it.as = r.par.ArrayStream()
	case lexer.TokenEOF:
		it.err = stream.NewUnexpectedEOFError(tok.Position())
	default:
		it.mode = itemModeScalar
	}
	return it
}

// Next advances to the next item.
func (it *ItemIterator) Next() bool {
	if it.err != nil {
		return false
	}

	switch it.mode {
	case itemModeObject:
		if !it.os.Next() {
			it.err = it.os.Err()
			return false
		}
		it.key = it.os.Key()
		it.current = it.os.Value()

	case itemModeArray:
		if !it.as.Next() {
			it.err = it.as.Err()
			return false
		}
		it.key = ""
		it.current = it.as.Value()

	case itemModeMatch:
		if !it.src.Next() {
			it.err = it.src.Err()
			return false
		}
		it.key = ""
		it.current = it.src.Value()

	case itemModeScalar:
		if it.scalarDone {
			return false
		}
		v, err := it.r.par.ParseValue()
		if err != nil {
			it.err = err
			return false
		}
		it.scalarDone = true
		it.key = ""
		it.current = v
	}

	it.index++
	it.r.itemsProcessed++
	return true
}

// Key returns the object member key of the current item. Array elements,
// scalars and path matches have an empty key.
func (it *ItemIterator) Key() string {
	return it.key
}

// Value returns the item produced by the last successful Next.
func (it *ItemIterator) Value() value.Value {
	return it.current
}

// Index returns the 0-based position of the current item.
func (it *ItemIterator) Index() int {
	return it.index
}

// TypeName classifies the current item as one of
// string, number, boolean, null, array or object.
func (it *ItemIterator) TypeName() string {
	return it.current.Kind().String()
}

// Rewind is a no-op once iteration has begun.
func (it *ItemIterator) Rewind() *ItemIterator {
	return it
}

// Err returns the first error encountered, if any.
func (it *ItemIterator) Err() error {
	return it.err
}
