package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/jetstream/pkg/stream"
)

// parse compiles a path expression text into segments.
func parse(text string) (*Expression, error) {
	if strings.TrimSpace(text) == "" {
		return nil, stream.NewPathError(text, "empty path expression")
	}
	if text[0] != '$' {
		return nil, stream.NewPathError(text, "path must start with '$'")
	}

	segments := []Segment{RootSegment()}
	pos := 1

	for pos < len(text) {
		switch text[pos] {
		case '.':
			seg, next, err := parseDotSegment(text, pos)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			pos = next
		case '[':
			seg, next, err := parseBracketSegment(text, pos)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			pos = next
		default:
			return nil, stream.NewPathError(text,
				fmt.Sprintf("unexpected character %q at position %d", string(text[pos]), pos))
		}
	}

	return newExpression(text, segments), nil
}

// parseDotSegment handles ".name", "..name" and ".*" starting at pos.
func parseDotSegment(text string, pos int) (Segment, int, error) {
	recursive := false
	pos++
	if pos < len(text) && text[pos] == '.' {
		recursive = true
		pos++
	}

	if !recursive && pos < len(text) && text[pos] == '*' {
		return WildcardSegment(), pos + 1, nil
	}

	name, next := scanIdentifier(text, pos)
	if name == "" {
		return Segment{}, 0, stream.NewPathError(text,
			fmt.Sprintf("expected property name at position %d", pos))
	}
	return PropertySegment(name, recursive), next, nil
}

// scanIdentifier reads a property name: letters, digits, '_' and '-'.
func scanIdentifier(text string, pos int) (string, int) {
	start := pos
	for pos < len(text) {
		c := text[pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '_' || c == '-' {
			pos++
			continue
		}
		break
	}
	return text[start:pos], pos
}

// parseBracketSegment handles "[...]" starting at the opening bracket.
func parseBracketSegment(text string, pos int) (Segment, int, error) {
	end, err := findClosingBracket(text, pos)
	if err != nil {
		return Segment{}, 0, err
	}
	inner := strings.TrimSpace(text[pos+1 : end])
	next := end + 1

	if inner == "" {
		return Segment{}, 0, stream.NewPathError(text, "empty bracket selector")
	}

	switch {
	case inner == "*":
		return WildcardSegment(), next, nil

	case inner[0] == '?':
		body, ok := strings.CutPrefix(inner, "?(")
		if !ok || !strings.HasSuffix(body, ")") {
			return Segment{}, 0, stream.NewPathError(text, "malformed filter selector")
		}
		expr, err := parseFilterExpr(text, strings.TrimSuffix(body, ")"))
		if err != nil {
			return Segment{}, 0, err
		}
		return FilterSegment(expr), next, nil

	case inner[0] == '"' || inner[0] == '\'':
		quote := inner[0]
		if len(inner) < 2 || inner[len(inner)-1] != quote {
			return Segment{}, 0, stream.NewPathError(text, "unterminated quoted name")
		}
		return PropertySegment(inner[1:len(inner)-1], false), next, nil

	case strings.Contains(inner, ":"):
		seg, err := parseSlice(text, inner)
		if err != nil {
			return Segment{}, 0, err
		}
		return seg, next, nil

	default:
		idx, err := strconv.Atoi(inner)
		if err != nil {
			return Segment{}, 0, stream.NewPathError(text,
				fmt.Sprintf("invalid selector %q", inner))
		}
		return IndexSegment(idx), next, nil
	}
}

// findClosingBracket locates the ']' matching the bracket at pos,
// skipping over quoted strings inside filter expressions.
func findClosingBracket(text string, pos int) (int, error) {
	var quote byte
	escaped := false
	for i := pos + 1; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case ']':
			return i, nil
		}
	}
	return 0, stream.NewPathError(text, "unclosed bracket")
}

// parseSlice handles "a:b" and "a:b:c" with nullable bounds.
func parseSlice(text, inner string) (Segment, error) {
	parts := strings.Split(inner, ":")
	if len(parts) > 3 {
		return Segment{}, stream.NewPathError(text,
			fmt.Sprintf("invalid slice %q", inner))
	}

	bound := func(s string) (*int, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, stream.NewPathError(text,
				fmt.Sprintf("invalid slice bound %q", s))
		}
		return &n, nil
	}

	start, err := bound(parts[0])
	if err != nil {
		return Segment{}, err
	}
	end, err := bound(parts[1])
	if err != nil {
		return Segment{}, err
	}

	step := 1
	if len(parts) == 3 {
		s := strings.TrimSpace(parts[2])
		if s != "" {
			step, err = strconv.Atoi(s)
			if err != nil || step < 1 {
				return Segment{}, stream.NewPathError(text,
					fmt.Sprintf("slice step must be a positive integer, got %q", s))
			}
		}
	}

	return SliceSegment(start, end, step), nil
}
