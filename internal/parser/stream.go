package parser

import (
	"github.com/shapestone/jetstream/internal/lexer"
	"github.com/shapestone/jetstream/pkg/stream"
	"github.com/shapestone/jetstream/pkg/value"
)

// ArrayStream is a lazy sequence over a JSON array's elements. The
// parser suspends between yielded elements; abandoning the stream
// mid-iteration leaves the token stream at an indeterminate offset.
//
// Usage follows the scanner idiom:
//
//	for s.Next() {
//	    use(s.Index(), s.Value())
//	}
//	if err := s.Err(); err != nil { ... }
type ArrayStream struct {
	p       *Parser
	started bool
	done    bool
	err     error
	index   int
	current value.Value
}

// ArrayStream returns a lazy stream over the array at the current
// position. The opening bracket is consumed on the first Next call.
func (p *Parser) ArrayStream() *ArrayStream {
	return &ArrayStream{p: p, index: -1}
}

// Next advances to the next element. It returns false at the end of the
// array or on error; Err distinguishes the two.
func (s *ArrayStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	if !s.started {
		if s.err = s.open(); s.err != nil {
			return false
		}
		s.started = true

		next, err := s.p.lex.Peek()
		if err != nil {
			s.err = err
			return false
		}
		if next.Kind == lexer.TokenRBracket {
			_, _ = s.p.lex.Next()
			s.p.leave()
			s.done = true
			return false
		}
	} else {
		tok, err := s.p.lex.Next()
		if err != nil {
			s.err = err
			return false
		}
		switch tok.Kind {
		case lexer.TokenComma:
			after, err := s.p.lex.Peek()
			if err != nil {
				s.err = err
				return false
			}
			if after.Kind == lexer.TokenRBracket {
				s.err = stream.NewParseError(after.Position(), "Trailing comma not allowed")
				return false
			}
		case lexer.TokenRBracket:
			s.p.leave()
			s.done = true
			return false
		case lexer.TokenEOF:
			s.err = stream.NewUnexpectedEOFError(tok.Position())
			return false
		default:
			s.err = stream.NewParseError(tok.Position(), "Expected comma or closing bracket")
			return false
		}
	}

	elem, err := s.p.ParseValue()
	if err != nil {
		s.err = err
		return false
	}
	s.index++
	s.current = elem
	return true
}

// open consumes the opening bracket and enters the container.
func (s *ArrayStream) open() error {
	tok, err := s.p.lex.Next()
	if err != nil {
		return err
	}
	if tok.Kind == lexer.TokenEOF {
		return stream.NewUnexpectedEOFError(tok.Position())
	}
	if tok.Kind != lexer.TokenLBracket {
		return stream.NewUnexpectedTokenError(tok.Position(), tok.Kind)
	}
	return s.p.enter(tok.Position())
}

// Value returns the element produced by the last successful Next.
func (s *ArrayStream) Value() value.Value {
	return s.current
}

// Index returns the 0-based position of the current element.
func (s *ArrayStream) Index() int {
	return s.index
}

// Err returns the first error encountered, if any.
func (s *ArrayStream) Err() error {
	return s.err
}

// ObjectStream is a lazy sequence over a JSON object's members, yielded
// in source order.
type ObjectStream struct {
	p       *Parser
	started bool
	done    bool
	err     error
	index   int
	key     string
	current value.Value
}

// ObjectStream returns a lazy stream over the object at the current
// position. The opening brace is consumed on the first Next call.
func (p *Parser) ObjectStream() *ObjectStream {
	return &ObjectStream{p: p, index: -1}
}

// Next advances to the next member. It returns false at the end of the
// object or on error; Err distinguishes the two.
func (s *ObjectStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	if !s.started {
		if s.err = s.open(); s.err != nil {
			return false
		}
		s.started = true

		next, err := s.p.lex.Peek()
		if err != nil {
			s.err = err
			return false
		}
		if next.Kind == lexer.TokenRBrace {
			_, _ = s.p.lex.Next()
			s.p.leave()
			s.done = true
			return false
		}
	} else {
		tok, err := s.p.lex.Next()
		if err != nil {
			s.err = err
			return false
		}
		switch tok.Kind {
		case lexer.TokenComma:
			after, err := s.p.lex.Peek()
			if err != nil {
				s.err = err
				return false
			}
			if after.Kind == lexer.TokenRBrace {
				s.err = stream.NewParseError(after.Position(), "Trailing comma not allowed")
				return false
			}
		case lexer.TokenRBrace:
			s.p.leave()
			s.done = true
			return false
		case lexer.TokenEOF:
			s.err = stream.NewUnexpectedEOFError(tok.Position())
			return false
		default:
			s.err = stream.NewParseError(tok.Position(), "Expected comma or closing brace")
			return false
		}
	}

	key, err := s.p.parseMemberKey()
	if err != nil {
		s.err = err
		return false
	}
	member, err := s.p.ParseValue()
	if err != nil {
		s.err = err
		return false
	}
	s.index++
	s.key = key
	s.current = member
	return true
}

// open consumes the opening brace and enters the container.
func (s *ObjectStream) open() error {
	tok, err := s.p.lex.Next()
	if err != nil {
		return err
	}
	if tok.Kind == lexer.TokenEOF {
		return stream.NewUnexpectedEOFError(tok.Position())
	}
	if tok.Kind != lexer.TokenLBrace {
		return stream.NewUnexpectedTokenError(tok.Position(), tok.Kind)
	}
	return s.p.enter(tok.Position())
}

// Key returns the member key produced by the last successful Next.
func (s *ObjectStream) Key() string {
	return s.key
}

// Value returns the member value produced by the last successful Next.
func (s *ObjectStream) Value() value.Value {
	return s.current
}

// Index returns the 0-based position of the current member.
func (s *ObjectStream) Index() int {
	return s.index
}

// Err returns the first error encountered, if any.
func (s *ObjectStream) Err() error {
	return s.err
}
