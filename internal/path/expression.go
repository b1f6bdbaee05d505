package path

// Expression is a compiled path: the original text, the ordered segment
// sequence, and precomputed streaming-capability flags.
type Expression struct {
	text     string
	segments []Segment

	hasRecursive          bool
	hasEarlyTermination   bool
	terminationIndex      int
	canUseSimpleStreaming bool
	selectorPos           int // segment index of the single selector, -1 if none
}

// newExpression wraps the segments and precomputes the capability flags.
func newExpression(text string, segments []Segment) *Expression {
	e := &Expression{
		text:        text,
		segments:    segments,
		selectorPos: -1,
	}
	e.computeFlags()
	return e
}

// Text returns the original path text.
func (e *Expression) Text() string {
	return e.text
}

// Segments returns the compiled segment sequence.
func (e *Expression) Segments() []Segment {
	return e.segments
}

// HasRecursive reports whether any segment is a recursive property.
func (e *Expression) HasRecursive() bool {
	return e.hasRecursive
}

// CanStreamArrayElements reports whether the expression is free of
// recursive segments, the precondition for any streamed evaluation.
func (e *Expression) CanStreamArrayElements() bool {
	return !e.hasRecursive
}

// EarlyTermination returns the element count after which streamed
// iteration may stop (index+1 for an index selector, the end bound for a
// slice), and whether such a bound exists.
func (e *Expression) EarlyTermination() (int, bool) {
	return e.terminationIndex, e.hasEarlyTermination
}

// CanUseSimpleStreaming reports whether the path has the shape
// Root (Property)* Selector (Property)* with a single non-recursive
// selector, the shape the parser can evaluate without materializing the
// streamed container.
func (e *Expression) CanUseSimpleStreaming() bool {
	return e.canUseSimpleStreaming
}

// SelectorPos returns the segment index of the single selector, or -1.
func (e *Expression) SelectorPos() int {
	return e.selectorPos
}

func (e *Expression) computeFlags() {
	for _, s := range e.segments {
		if s.Kind == SegmentProperty && s.Recursive {
			e.hasRecursive = true
		}
	}

	if n := len(e.segments); n > 0 {
		last := e.segments[n-1]
		switch last.Kind {
		case SegmentIndex:
			if last.Index >= 0 {
				e.hasEarlyTermination = true
				e.terminationIndex = last.Index + 1
			}
		case SegmentSlice:
			if last.End != nil && *last.End > 0 {
				e.hasEarlyTermination = true
				e.terminationIndex = *last.End
			}
		}
	}

	e.canUseSimpleStreaming = e.computeSimpleStreaming()
}

// computeSimpleStreaming checks the Root (Property)* Selector (Property)*
// shape. A negative index selector disqualifies the path: resolving it
// needs the whole array, so the evaluator falls back to materialization.
func (e *Expression) computeSimpleStreaming() bool {
	if e.hasRecursive {
		return false
	}
	if len(e.segments) == 0 || e.segments[0].Kind != SegmentRoot {
		return false
	}

	selectorPos := -1
	for i, s := range e.segments[1:] {
		switch {
		case s.Kind == SegmentProperty:
			// fine anywhere
		case s.IsSelector():
			if selectorPos != -1 {
				return false
			}
			if s.Kind == SegmentIndex && s.Index < 0 {
				return false
			}
			if s.Kind == SegmentSlice {
				if s.Start != nil && *s.Start < 0 {
					return false
				}
				if s.End != nil && *s.End < 0 {
					return false
				}
			}
			selectorPos = i + 1
		default:
			return false
		}
	}

	if selectorPos == -1 {
		return false
	}
	e.selectorPos = selectorPos
	return true
}
