package stream

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shapestone/jetstream/pkg/value"
)

func TestParseErrorFormatting(t *testing.T) {
	// Given
	err := NewParseError(value.Position{Offset: 10, Line: 3, Column: 7}, "Unexpected token RBrace")

	// Then
	expected := "error at line 3, column 7: Unexpected token RBrace"
	if err.Error() != expected {
		t.Fatalf("Expected %q, got %q", expected, err.Error())
	}
}

func TestParseErrorWithoutPosition(t *testing.T) {
	// Given
	err := NewParseError(value.Position{}, "broken")

	// Then
	if !strings.HasPrefix(err.Error(), "parse error:") {
		t.Fatalf("Expected generic parse prefix, got %q", err.Error())
	}
}

func TestPathErrorCarriesText(t *testing.T) {
	// Given
	err := NewPathError("$.bad[", "unclosed bracket")

	// Then
	if err.PathText != "$.bad[" {
		t.Fatalf("Expected path text to be retained")
	}
	if !strings.Contains(err.Error(), `"$.bad["`) {
		t.Fatalf("Expected message to include the path, got %q", err.Error())
	}
}

func TestIOErrorWrapsCause(t *testing.T) {
	// Given
	cause := fmt.Errorf("disk gone")
	err := NewIOError("read failed", "/tmp/data.json", cause)

	// Then
	if !errors.Is(err, cause) {
		t.Fatalf("Expected cause to be reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "/tmp/data.json") {
		t.Fatalf("Expected file in message, got %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{name: "parse matches", err: NewParseError(value.Position{}, "x"), kind: KindParse, want: true},
		{name: "parse is not io", err: NewParseError(value.Position{}, "x"), kind: KindIO, want: false},
		{name: "wrapped library error", err: fmt.Errorf("outer: %w", NewPathError("$", "x")), kind: KindPath, want: true},
		{name: "foreign error", err: fmt.Errorf("plain"), kind: KindIO, want: false},
		{name: "nil", err: nil, kind: KindIO, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Fatalf("IsKind() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestSingleHandlerCatchesAllKinds(t *testing.T) {
	// Given - one errors.As target covers the whole taxonomy
	all := []error{
		NewIOError("io", "", nil),
		NewParseError(value.Position{Line: 1, Column: 1}, "parse"),
		NewPathError("$", "path"),
		NewArgumentError("argument"),
	}

	// Then
	for _, err := range all {
		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("Expected *Error to catch %v", err)
		}
	}
}
