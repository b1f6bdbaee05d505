// Package path compiles and evaluates the JSONPath subset understood by
// the reader: root, properties (plain and recursive), wildcards, indexes,
// slices and comparison filters.
package path

import (
	"fmt"
	"strings"
)

// SegmentKind identifies the variant of a path segment.
type SegmentKind uint8

const (
	SegmentRoot SegmentKind = iota
	SegmentProperty
	SegmentWildcard
	SegmentIndex
	SegmentSlice
	SegmentFilter
)

// String returns the segment kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentRoot:
		return "root"
	case SegmentProperty:
		return "property"
	case SegmentWildcard:
		return "wildcard"
	case SegmentIndex:
		return "index"
	case SegmentSlice:
		return "slice"
	case SegmentFilter:
		return "filter"
	}
	return "unknown"
}

// Segment is one element of a compiled path expression, a tagged sum
// over the selector variants.
type Segment struct {
	Kind      SegmentKind
	Name      string      // property name
	Recursive bool        // property matches at any depth
	Index     int         // array index, negative counts from the end
	Start     *int        // slice lower bound, nil means 0
	End       *int        // slice upper bound, nil means length
	Step      int         // slice step, >= 1
	Filter    *FilterExpr // filter predicate
}

// RootSegment returns the segment matching only the document root.
func RootSegment() Segment {
	return Segment{Kind: SegmentRoot}
}

// PropertySegment returns a property segment.
func PropertySegment(name string, recursive bool) Segment {
	return Segment{Kind: SegmentProperty, Name: name, Recursive: recursive}
}

// WildcardSegment returns the segment matching every child.
func WildcardSegment() Segment {
	return Segment{Kind: SegmentWildcard}
}

// IndexSegment returns an array index segment.
func IndexSegment(i int) Segment {
	return Segment{Kind: SegmentIndex, Index: i}
}

// SliceSegment returns a slice segment with nullable bounds.
func SliceSegment(start, end *int, step int) Segment {
	if step < 1 {
		step = 1
	}
	return Segment{Kind: SegmentSlice, Start: start, End: end, Step: step}
}

// FilterSegment returns a filter segment.
func FilterSegment(expr *FilterExpr) Segment {
	return Segment{Kind: SegmentFilter, Filter: expr}
}

// IsSelector reports whether the segment is a bracketed selector or
// wildcard, the shapes that select among a container's children.
func (s Segment) IsSelector() bool {
	switch s.Kind {
	case SegmentWildcard, SegmentIndex, SegmentSlice, SegmentFilter:
		return true
	}
	return false
}

// String renders the segment in path syntax.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentRoot:
		return "$"
	case SegmentProperty:
		if s.Recursive {
			return ".." + s.Name
		}
		return "." + s.Name
	case SegmentWildcard:
		return ".*"
	case SegmentIndex:
		return fmt.Sprintf("[%d]", s.Index)
	case SegmentSlice:
		var sb strings.Builder
		sb.WriteByte('[')
		if s.Start != nil {
			fmt.Fprintf(&sb, "%d", *s.Start)
		}
		sb.WriteByte(':')
		if s.End != nil {
			fmt.Fprintf(&sb, "%d", *s.End)
		}
		if s.Step > 1 {
			fmt.Fprintf(&sb, ":%d", s.Step)
		}
		sb.WriteByte(']')
		return sb.String()
	case SegmentFilter:
		return fmt.Sprintf("[?(%s)]", s.Filter)
	}
	return "<invalid segment>"
}
