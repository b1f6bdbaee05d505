package path

import "github.com/shapestone/jetstream/pkg/value"

// Evaluator wraps a compiled expression with the helpers the streaming
// parser consults while deciding what to build, skip or terminate.
type Evaluator struct {
	expr *Expression
}

// NewEvaluator creates an evaluator over a compiled expression.
func NewEvaluator(expr *Expression) *Evaluator {
	return &Evaluator{expr: expr}
}

// Expression returns the compiled expression.
func (e *Evaluator) Expression() *Expression {
	return e.expr
}

// CanUseSimpleStreaming reports whether the parser may narrow directly
// to the selector's container instead of materializing the document.
func (e *Evaluator) CanUseSimpleStreaming() bool {
	return e.expr.CanUseSimpleStreaming()
}

// EarlyTermination returns the element count after which streamed
// iteration may stop, and whether such a bound exists.
func (e *Evaluator) EarlyTermination() (int, bool) {
	return e.expr.EarlyTermination()
}

// LeadingProperties returns the property names between the root and the
// selector. Valid only when CanUseSimpleStreaming is true.
func (e *Evaluator) LeadingProperties() []string {
	pos := e.expr.SelectorPos()
	if pos < 0 {
		return nil
	}
	var names []string
	for _, s := range e.expr.Segments()[1:pos] {
		names = append(names, s.Name)
	}
	return names
}

// Selector returns the single selector segment.
// Valid only when CanUseSimpleStreaming is true.
func (e *Evaluator) Selector() Segment {
	return e.expr.Segments()[e.expr.SelectorPos()]
}

// TrailingProperties returns the property names after the selector.
// Valid only when CanUseSimpleStreaming is true.
func (e *Evaluator) TrailingProperties() []string {
	pos := e.expr.SelectorPos()
	if pos < 0 {
		return nil
	}
	var names []string
	for _, s := range e.expr.Segments()[pos+1:] {
		names = append(names, s.Name)
	}
	return names
}

// AdmitsIndex decides from the element index alone whether the selector
// matches. The second return is false when the decision needs the
// materialized element (filter selectors).
func (e *Evaluator) AdmitsIndex(i int) (matches, decided bool) {
	sel := e.Selector()
	switch sel.Kind {
	case SegmentWildcard:
		return true, true
	case SegmentIndex:
		return i == sel.Index, true
	case SegmentSlice:
		start := 0
		if sel.Start != nil {
			start = *sel.Start
		}
		if i < start {
			return false, true
		}
		if sel.End != nil && i >= *sel.End {
			return false, true
		}
		return (i-start)%sel.Step == 0, true
	case SegmentFilter:
		return false, false
	}
	return false, true
}

// MatchesValue evaluates a filter selector against a materialized
// element. Non-filter selectors always match here; their decision was
// already made from the index.
func (e *Evaluator) MatchesValue(v value.Value) bool {
	sel := e.Selector()
	if sel.Kind != SegmentFilter {
		return true
	}
	return sel.Filter.Matches(v)
}

// ExtractTrailing walks the trailing property chain over a materialized
// element and returns the leaf, or false when the chain misses.
func (e *Evaluator) ExtractTrailing(v value.Value) (value.Value, bool) {
	current := v
	for _, name := range e.TrailingProperties() {
		next, ok := current.Get(name)
		if !ok {
			return value.Null(), false
		}
		current = next
	}
	return current, true
}

//
// Full-tree filtering - applied when streaming is not possible
//

// Apply walks a materialized value and returns every match of the
// expression, in document order.
func Apply(expr *Expression, root value.Value) []value.Value {
	current := []value.Value{root}
	for _, seg := range expr.Segments() {
		if len(current) == 0 {
			return nil
		}
		var next []value.Value
		for _, v := range current {
			next = append(next, applySegment(seg, v, root)...)
		}
		current = next
	}
	return current
}

// applySegment produces the children of v selected by one segment.
func applySegment(seg Segment, v, root value.Value) []value.Value {
	switch seg.Kind {
	case SegmentRoot:
		return []value.Value{root}

	case SegmentProperty:
		if seg.Recursive {
			var out []value.Value
			collectRecursive(seg.Name, v, &out)
			return out
		}
		if m, ok := v.Get(seg.Name); ok {
			return []value.Value{m}
		}
		return nil

	case SegmentWildcard:
		return children(v)

	case SegmentIndex:
		if v.Kind() != value.KindArray {
			return nil
		}
		i := seg.Index
		if i < 0 {
			i += v.Len()
		}
		if e, ok := v.At(i); ok {
			return []value.Value{e}
		}
		return nil

	case SegmentSlice:
		if v.Kind() != value.KindArray {
			return nil
		}
		from, to := resolveSliceBounds(seg.Start, seg.End, v.Len())
		var out []value.Value
		for i := from; i < to; i += seg.Step {
			e, _ := v.At(i)
			out = append(out, e)
		}
		return out

	case SegmentFilter:
		var out []value.Value
		for _, child := range children(v) {
			if seg.Filter.Matches(child) {
				out = append(out, child)
			}
		}
		return out
	}
	return nil
}

// children returns every array element or object member value in order.
func children(v value.Value) []value.Value {
	switch v.Kind() {
	case value.KindArray:
		return v.ArrayVal()
	case value.KindObject:
		obj := v.ObjectVal()
		out := make([]value.Value, 0, obj.Len())
		for i := 0; i < obj.Len(); i++ {
			_, m := obj.At(i)
			out = append(out, m)
		}
		return out
	}
	return nil
}

// collectRecursive gathers members named name at any depth, in document
// order, descending through both objects and arrays.
func collectRecursive(name string, v value.Value, out *[]value.Value) {
	switch v.Kind() {
	case value.KindObject:
		obj := v.ObjectVal()
		for i := 0; i < obj.Len(); i++ {
			k, m := obj.At(i)
			if k == name {
				*out = append(*out, m)
			}
			collectRecursive(name, m, out)
		}
	case value.KindArray:
		for _, e := range v.ArrayVal() {
			collectRecursive(name, e, out)
		}
	}
}

// resolveSliceBounds applies nullable, possibly negative slice bounds to
// a known length, clamping to [0, length].
func resolveSliceBounds(start, end *int, length int) (int, int) {
	from := 0
	if start != nil {
		from = *start
		if from < 0 {
			from += length
		}
	}
	to := length
	if end != nil {
		to = *end
		if to < 0 {
			to += length
		}
	}
	if from < 0 {
		from = 0
	}
	if to > length {
		to = length
	}
	return from, to
}
