package parser

import (
	"github.com/shapestone/jetstream/internal/lexer"
	"github.com/shapestone/jetstream/internal/path"
	"github.com/shapestone/jetstream/pkg/stream"
	"github.com/shapestone/jetstream/pkg/value"
)

// MatchStream yields the matches of a simple-streaming path expression
// without materializing the streamed container. The parser descends the
// leading property chain skipping sibling members, streams the target
// container element by element, skips elements ruled out by their index,
// and applies the trailing property chain to each materialized match.
type MatchStream struct {
	p    *Parser
	eval *path.Evaluator

	started bool
	done    bool
	err     error

	inObject bool // streamed container is an object
	index    int  // 0-based position of the next element
	current  value.Value
}

// MatchStream returns a lazy stream of path matches. The evaluator's
// expression must satisfy CanUseSimpleStreaming.
func (p *Parser) MatchStream(eval *path.Evaluator) *MatchStream {
	return &MatchStream{p: p, eval: eval}
}

// Next advances to the next match. It returns false when the container
// is exhausted, the early-termination bound is reached, or an error
// occurred; Err distinguishes failure from completion.
func (s *MatchStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	if !s.started {
		ok, err := s.descend()
		if err != nil {
			s.err = err
			return false
		}
		if !ok {
			s.done = true
			return false
		}
		s.started = true
	}

	for {
		elem, yielded, end, err := s.advance()
		if err != nil {
			s.err = err
			return false
		}
		if end {
			s.done = true
			return false
		}
		if !yielded {
			continue
		}

		s.current = elem

		// Early termination: once the bounded selector is satisfied the
		// remainder of the container is left unparsed.
		if term, ok := s.eval.EarlyTermination(); ok && s.index >= term {
			s.done = true
		}
		return true
	}
}

// descend walks the leading property chain to the streamed container
// and consumes its opening token. Returns false without error when the
// document shape diverges from the path (no matches).
func (s *MatchStream) descend() (bool, error) {
	for _, name := range s.eval.LeadingProperties() {
		found, err := s.descendInto(name)
		if err != nil || !found {
			return false, err
		}
	}

	tok, err := s.p.lex.Peek()
	if err != nil {
		return false, err
	}
	switch tok.Kind {
	case lexer.TokenLBracket:
		s.inObject = false
	case lexer.TokenLBrace:
		s.inObject = true
	case lexer.TokenEOF:
		return false, stream.NewUnexpectedEOFError(tok.Position())
	default:
		// The path names a container but the document holds a scalar
		// here: no matches.
		return false, s.p.SkipValue()
	}

	_, _ = s.p.lex.Next()
	if err := s.p.enter(tok.Position()); err != nil {
		return false, err
	}
	return true, nil
}

// descendInto enters the object at the current position and positions
// the token stream on the value of the named member, skipping siblings.
// Returns false when the member is absent or the value is not an object.
func (s *MatchStream) descendInto(name string) (bool, error) {
	tok, err := s.p.lex.Next()
	if err != nil {
		return false, err
	}
	if tok.Kind == lexer.TokenEOF {
		return false, stream.NewUnexpectedEOFError(tok.Position())
	}
	if tok.Kind != lexer.TokenLBrace {
		// Not an object: a property segment cannot match. The value's
		// remaining tokens are abandoned with the iteration.
		return false, nil
	}
	if err := s.p.enter(tok.Position()); err != nil {
		return false, err
	}

	first := true
	for {
		if first {
			next, err := s.p.lex.Peek()
			if err != nil {
				return false, err
			}
			if next.Kind == lexer.TokenRBrace {
				_, _ = s.p.lex.Next()
				s.p.leave()
				return false, nil
			}
			first = false
		} else {
			tok, err := s.p.lex.Next()
			if err != nil {
				return false, err
			}
			switch tok.Kind {
			case lexer.TokenComma:
				// next member follows
			case lexer.TokenRBrace:
				s.p.leave()
				return false, nil
			case lexer.TokenEOF:
				return false, stream.NewUnexpectedEOFError(tok.Position())
			default:
				return false, stream.NewParseError(tok.Position(), "Expected comma or closing brace")
			}
		}

		key, err := s.p.parseMemberKey()
		if err != nil {
			return false, err
		}
		if key == name {
			// Positioned on the member value. The enclosing object stays
			// open; its remaining members are abandoned with the
			// iteration, as streamed consumption never returns here.
			return true, nil
		}
		if err := s.p.SkipValue(); err != nil {
			return false, err
		}
	}
}

// advance consumes one element of the streamed container. It returns
// the extracted match when the element is selected, or yielded=false
// when the element was skipped, or end=true at the container's close.
func (s *MatchStream) advance() (match value.Value, yielded, end bool, err error) {
	closing := lexer.TokenRBracket
	if s.inObject {
		closing = lexer.TokenRBrace
	}

	if s.index == 0 {
		next, err := s.p.lex.Peek()
		if err != nil {
			return value.Null(), false, false, err
		}
		if next.Kind == closing {
			_, _ = s.p.lex.Next()
			s.p.leave()
			return value.Null(), false, true, nil
		}
	} else {
		tok, err := s.p.lex.Next()
		if err != nil {
			return value.Null(), false, false, err
		}
		switch tok.Kind {
		case lexer.TokenComma:
			after, err := s.p.lex.Peek()
			if err != nil {
				return value.Null(), false, false, err
			}
			if after.Kind == closing {
				return value.Null(), false, false,
					stream.NewParseError(after.Position(), "Trailing comma not allowed")
			}
		case lexer.TokenEOF:
			return value.Null(), false, false, stream.NewUnexpectedEOFError(tok.Position())
		default:
			if tok.Kind == closing {
				s.p.leave()
				return value.Null(), false, true, nil
			}
			msg := "Expected comma or closing bracket"
			if s.inObject {
				msg = "Expected comma or closing brace"
			}
			return value.Null(), false, false, stream.NewParseError(tok.Position(), msg)
		}
	}

	i := s.index
	s.index++

	if s.inObject {
		if _, err := s.p.parseMemberKey(); err != nil {
			return value.Null(), false, false, err
		}
	}

	admits, decided := s.eval.AdmitsIndex(i)
	if decided && !admits {
		// Ruled out by position alone: discard without materializing.
		if err := s.p.SkipValue(); err != nil {
			return value.Null(), false, false, err
		}
		return value.Null(), false, false, nil
	}

	elem, err := s.p.ParseValue()
	if err != nil {
		return value.Null(), false, false, err
	}

	if !decided && !s.eval.MatchesValue(elem) {
		return value.Null(), false, false, nil
	}

	leaf, ok := s.eval.ExtractTrailing(elem)
	if !ok {
		return value.Null(), false, false, nil
	}
	return leaf, true, false, nil
}

// Value returns the match produced by the last successful Next.
func (s *MatchStream) Value() value.Value {
	return s.current
}

// Err returns the first error encountered, if any.
func (s *MatchStream) Err() error {
	return s.err
}
