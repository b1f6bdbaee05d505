package path

import "testing"

func TestStreamingCapabilityFlags(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		recursive bool
		simple    bool
	}{
		{name: "root only", text: "$", recursive: false, simple: false},
		{name: "properties only", text: "$.a.b", recursive: false, simple: false},
		{name: "wildcard selector", text: "$.items[*]", recursive: false, simple: true},
		{name: "index selector", text: "$.items[2]", recursive: false, simple: true},
		{name: "slice selector", text: "$.items[0:2]", recursive: false, simple: true},
		{name: "filter selector", text: "$.items[?(@.v > 1)]", recursive: false, simple: true},
		{name: "selector then properties", text: "$.items[*].id.value", recursive: false, simple: true},
		{name: "leading chain", text: "$.a.b.c[*]", recursive: false, simple: true},
		{name: "root level wildcard", text: "$[*]", recursive: false, simple: true},
		{name: "recursive descent", text: "$..items[*]", recursive: true, simple: false},
		{name: "two selectors", text: "$.a[*].b[0]", recursive: false, simple: false},
		{name: "negative index", text: "$.items[-1]", recursive: false, simple: false},
		{name: "negative slice bound", text: "$.items[-3:]", recursive: false, simple: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustCompile(t, tt.text)
			if e.HasRecursive() != tt.recursive {
				t.Fatalf("HasRecursive() = %t, want %t", e.HasRecursive(), tt.recursive)
			}
			if e.CanStreamArrayElements() == tt.recursive {
				t.Fatalf("CanStreamArrayElements() must be the inverse of HasRecursive()")
			}
			if e.CanUseSimpleStreaming() != tt.simple {
				t.Fatalf("CanUseSimpleStreaming() = %t, want %t", e.CanUseSimpleStreaming(), tt.simple)
			}
		})
	}
}

func TestEarlyTermination(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		index int
		has   bool
	}{
		{name: "positive index", text: "$.items[2]", index: 3, has: true},
		{name: "index zero", text: "$.items[0]", index: 1, has: true},
		{name: "bounded slice", text: "$.items[0:2]", index: 2, has: true},
		{name: "bounded slice with start", text: "$.items[1:4]", index: 4, has: true},
		{name: "negative index", text: "$.items[-1]", has: false},
		{name: "open slice", text: "$.items[2:]", has: false},
		{name: "wildcard", text: "$.items[*]", has: false},
		{name: "trailing property", text: "$.items[2].id", has: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustCompile(t, tt.text)
			index, has := e.EarlyTermination()
			if has != tt.has {
				t.Fatalf("EarlyTermination() has = %t, want %t", has, tt.has)
			}
			if has && index != tt.index {
				t.Fatalf("EarlyTermination() index = %d, want %d", index, tt.index)
			}
		})
	}
}

func TestEvaluatorChains(t *testing.T) {
	// Given
	e := mustCompile(t, "$.data.items[*].meta.id")
	ev := NewEvaluator(e)

	// Then
	leading := ev.LeadingProperties()
	if len(leading) != 2 || leading[0] != "data" || leading[1] != "items" {
		t.Fatalf("Expected leading chain [data items], got %v", leading)
	}

	trailing := ev.TrailingProperties()
	if len(trailing) != 2 || trailing[0] != "meta" || trailing[1] != "id" {
		t.Fatalf("Expected trailing chain [meta id], got %v", trailing)
	}

	if ev.Selector().Kind != SegmentWildcard {
		t.Fatalf("Expected wildcard selector, got %s", ev.Selector().Kind)
	}
}

func TestEvaluatorAdmitsIndex(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		index   int
		matches bool
		decided bool
	}{
		{name: "wildcard admits all", text: "$.a[*]", index: 7, matches: true, decided: true},
		{name: "index match", text: "$.a[3]", index: 3, matches: true, decided: true},
		{name: "index miss", text: "$.a[3]", index: 2, matches: false, decided: true},
		{name: "slice in range", text: "$.a[1:4]", index: 2, matches: true, decided: true},
		{name: "slice below", text: "$.a[1:4]", index: 0, matches: false, decided: true},
		{name: "slice above", text: "$.a[1:4]", index: 4, matches: false, decided: true},
		{name: "slice step", text: "$.a[0:6:2]", index: 3, matches: false, decided: true},
		{name: "slice step hit", text: "$.a[0:6:2]", index: 4, matches: true, decided: true},
		{name: "filter undecided", text: "$.a[?(@.x == 1)]", index: 0, matches: false, decided: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator(mustCompile(t, tt.text))
			matches, decided := ev.AdmitsIndex(tt.index)
			if matches != tt.matches || decided != tt.decided {
				t.Fatalf("AdmitsIndex(%d) = (%t, %t), want (%t, %t)",
					tt.index, matches, decided, tt.matches, tt.decided)
			}
		})
	}
}
