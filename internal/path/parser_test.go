package path

import (
	"testing"

	"github.com/shapestone/jetstream/pkg/stream"
)

func mustCompile(t *testing.T, text string) *Expression {
	t.Helper()
	e, err := Compile(text)
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", text, err)
	}
	return e
}

func TestCompileSegments(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		kinds []SegmentKind
	}{
		{
			name:  "root only",
			text:  "$",
			kinds: []SegmentKind{SegmentRoot},
		},
		{
			name:  "dot properties",
			text:  "$.store.book",
			kinds: []SegmentKind{SegmentRoot, SegmentProperty, SegmentProperty},
		},
		{
			name:  "recursive property",
			text:  "$..author",
			kinds: []SegmentKind{SegmentRoot, SegmentProperty},
		},
		{
			name:  "dot wildcard",
			text:  "$.*",
			kinds: []SegmentKind{SegmentRoot, SegmentWildcard},
		},
		{
			name:  "bracket wildcard",
			text:  "$[*]",
			kinds: []SegmentKind{SegmentRoot, SegmentWildcard},
		},
		{
			name:  "index",
			text:  "$[3]",
			kinds: []SegmentKind{SegmentRoot, SegmentIndex},
		},
		{
			name:  "negative index",
			text:  "$[-1]",
			kinds: []SegmentKind{SegmentRoot, SegmentIndex},
		},
		{
			name:  "slice",
			text:  "$[1:4]",
			kinds: []SegmentKind{SegmentRoot, SegmentSlice},
		},
		{
			name:  "slice with step",
			text:  "$[0:10:2]",
			kinds: []SegmentKind{SegmentRoot, SegmentSlice},
		},
		{
			name:  "open slice",
			text:  "$[:5]",
			kinds: []SegmentKind{SegmentRoot, SegmentSlice},
		},
		{
			name:  "quoted property double",
			text:  `$["first name"]`,
			kinds: []SegmentKind{SegmentRoot, SegmentProperty},
		},
		{
			name:  "quoted property single",
			text:  `$['first name']`,
			kinds: []SegmentKind{SegmentRoot, SegmentProperty},
		},
		{
			name:  "filter",
			text:  `$[?(@.price > 10)]`,
			kinds: []SegmentKind{SegmentRoot, SegmentFilter},
		},
		{
			name:  "mixed",
			text:  `$.data.items[2].name`,
			kinds: []SegmentKind{SegmentRoot, SegmentProperty, SegmentProperty, SegmentIndex, SegmentProperty},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustCompile(t, tt.text)
			segments := e.Segments()
			if len(segments) != len(tt.kinds) {
				t.Fatalf("Expected %d segments, got %d", len(tt.kinds), len(segments))
			}
			for i, kind := range tt.kinds {
				if segments[i].Kind != kind {
					t.Fatalf("Segment %d: expected %s, got %s", i, kind, segments[i].Kind)
				}
			}
		})
	}
}

func TestCompileSegmentDetails(t *testing.T) {
	// Given
	e := mustCompile(t, "$..tags[1:5:2]")
	segments := e.Segments()

	// Then - recursive flag
	if !segments[1].Recursive || segments[1].Name != "tags" {
		t.Fatalf("Expected recursive property 'tags', got %+v", segments[1])
	}

	// Then - slice bounds and step
	slice := segments[2]
	if slice.Start == nil || *slice.Start != 1 {
		t.Fatalf("Expected slice start 1, got %v", slice.Start)
	}
	if slice.End == nil || *slice.End != 5 {
		t.Fatalf("Expected slice end 5, got %v", slice.End)
	}
	if slice.Step != 2 {
		t.Fatalf("Expected slice step 2, got %d", slice.Step)
	}
}

func TestCompileFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: "   "},
		{name: "missing root", text: ".items"},
		{name: "unclosed bracket", text: "$[1"},
		{name: "empty bracket", text: "$[]"},
		{name: "unterminated quoted name", text: `$["name`},
		{name: "bad selector", text: "$[abc]"},
		{name: "missing property name", text: "$."},
		{name: "zero step", text: "$[0:4:0]"},
		{name: "negative step", text: "$[0:4:-1]"},
		{name: "too many slice parts", text: "$[0:1:2:3]"},
		{name: "malformed filter", text: "$[?(price)]"},
		{name: "filter without chain", text: "$[?(@)]"},
		{name: "compound filter and", text: "$[?(@.a == 1 && @.b == 2)]"},
		{name: "compound filter or", text: "$[?(@.a == 1 || @.b == 2)]"},
		{name: "bad filter operator", text: "$[?(@.a ~ 1)]"},
		{name: "bad filter literal", text: "$[?(@.a == nope)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.text)
			if !stream.IsKind(err, stream.KindPath) {
				t.Fatalf("Expected path error for %q, got %v", tt.text, err)
			}
			if err != nil {
				se := err.(*stream.Error)
				if se.PathText != tt.text {
					t.Fatalf("Expected error to carry path text %q, got %q", tt.text, se.PathText)
				}
			}
		})
	}
}

func TestCompileCachesExpressions(t *testing.T) {
	// Given
	first := mustCompile(t, "$.cache.check[0]")

	// When
	second := mustCompile(t, "$.cache.check[0]")

	// Then - the same compiled instance comes back
	if first != second {
		t.Fatalf("Expected the cached expression instance to be reused")
	}
}
