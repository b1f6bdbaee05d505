// Package parser turns a token stream into materialized values, lazy
// container streams, or skipped subtrees, with bounded nesting depth.
package parser

import (
	"github.com/shapestone/jetstream/internal/lexer"
	"github.com/shapestone/jetstream/pkg/stream"
	"github.com/shapestone/jetstream/pkg/value"
)

// Parser consumes tokens from a lexer. It tracks the current container
// nesting depth; the depth returns to its entry value after every
// completed parse and skip.
type Parser struct {
	lex      *lexer.Lexer
	maxDepth int
	depth    int
}

// New creates a parser with the given depth limit.
func New(lex *lexer.Lexer, maxDepth int) *Parser {
	return &Parser{lex: lex, maxDepth: maxDepth}
}

// Depth returns the current nesting level.
func (p *Parser) Depth() int {
	return p.depth
}

// Lexer returns the underlying lexer.
func (p *Parser) Lexer() *lexer.Lexer {
	return p.lex
}

// enter increments the nesting depth on entry into a container body.
func (p *Parser) enter(pos value.Position) error {
	p.depth++
	if p.depth > p.maxDepth {
		return stream.NewParseError(pos, "Maximum nesting depth exceeded")
	}
	return nil
}

// leave decrements the nesting depth when a container closes.
func (p *Parser) leave() {
	p.depth--
}

// ParseValue materializes exactly one value.
func (p *Parser) ParseValue() (value.Value, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return value.Null(), err
	}
	return p.parseValueFrom(tok)
}

// parseValueFrom materializes a value whose first token was consumed.
func (p *Parser) parseValueFrom(tok lexer.Token) (value.Value, error) {
	switch tok.Kind {
	case lexer.TokenString:
		return value.String(tok.Value), nil
	case lexer.TokenNumber:
		if tok.IsFloat {
			return value.Float(tok.Float), nil
		}
		return value.Int(tok.Int), nil
	case lexer.TokenTrue:
		return value.Bool(true), nil
	case lexer.TokenFalse:
		return value.Bool(false), nil
	case lexer.TokenNull:
		return value.Null(), nil
	case lexer.TokenLBrace:
		return p.parseObjectBody(tok)
	case lexer.TokenLBracket:
		return p.parseArrayBody(tok)
	case lexer.TokenEOF:
		return value.Null(), stream.NewUnexpectedEOFError(tok.Position())
	}
	return value.Null(), stream.NewUnexpectedTokenError(tok.Position(), tok.Kind)
}

// parseArrayBody materializes an array whose '[' was consumed.
func (p *Parser) parseArrayBody(open lexer.Token) (value.Value, error) {
	if err := p.enter(open.Position()); err != nil {
		return value.Null(), err
	}
	defer p.leave()

	elements := []value.Value{}

	next, err := p.lex.Peek()
	if err != nil {
		return value.Null(), err
	}
	if next.Kind == lexer.TokenRBracket {
		_, _ = p.lex.Next()
		return value.Array(elements), nil
	}

	for {
		elem, err := p.ParseValue()
		if err != nil {
			return value.Null(), err
		}
		elements = append(elements, elem)

		tok, err := p.lex.Next()
		if err != nil {
			return value.Null(), err
		}
		switch tok.Kind {
		case lexer.TokenComma:
			after, err := p.lex.Peek()
			if err != nil {
				return value.Null(), err
			}
			if after.Kind == lexer.TokenRBracket {
				return value.Null(), stream.NewParseError(after.Position(), "Trailing comma not allowed")
			}
		case lexer.TokenRBracket:
			return value.Array(elements), nil
		case lexer.TokenEOF:
			return value.Null(), stream.NewUnexpectedEOFError(tok.Position())
		default:
			return value.Null(), stream.NewParseError(tok.Position(), "Expected comma or closing bracket")
		}
	}
}

// parseObjectBody materializes an object whose '{' was consumed.
// Member insertion order is preserved.
func (p *Parser) parseObjectBody(open lexer.Token) (value.Value, error) {
	if err := p.enter(open.Position()); err != nil {
		return value.Null(), err
	}
	defer p.leave()

	obj := value.NewObject()

	next, err := p.lex.Peek()
	if err != nil {
		return value.Null(), err
	}
	if next.Kind == lexer.TokenRBrace {
		_, _ = p.lex.Next()
		return value.ObjectOf(obj), nil
	}

	for {
		key, err := p.parseMemberKey()
		if err != nil {
			return value.Null(), err
		}

		member, err := p.ParseValue()
		if err != nil {
			return value.Null(), err
		}
		obj.Set(key, member)

		tok, err := p.lex.Next()
		if err != nil {
			return value.Null(), err
		}
		switch tok.Kind {
		case lexer.TokenComma:
			after, err := p.lex.Peek()
			if err != nil {
				return value.Null(), err
			}
			if after.Kind == lexer.TokenRBrace {
				return value.Null(), stream.NewParseError(after.Position(), "Trailing comma not allowed")
			}
		case lexer.TokenRBrace:
			return value.ObjectOf(obj), nil
		case lexer.TokenEOF:
			return value.Null(), stream.NewUnexpectedEOFError(tok.Position())
		default:
			return value.Null(), stream.NewParseError(tok.Position(), "Expected comma or closing brace")
		}
	}
}

// parseMemberKey consumes a string key and the following colon.
func (p *Parser) parseMemberKey() (string, error) {
	keyTok, err := p.lex.Next()
	if err != nil {
		return "", err
	}
	if keyTok.Kind == lexer.TokenEOF {
		return "", stream.NewUnexpectedEOFError(keyTok.Position())
	}
	if keyTok.Kind != lexer.TokenString {
		return "", stream.NewParseError(keyTok.Position(), "Expected string key")
	}

	colon, err := p.lex.Next()
	if err != nil {
		return "", err
	}
	if colon.Kind == lexer.TokenEOF {
		return "", stream.NewUnexpectedEOFError(colon.Position())
	}
	if colon.Kind != lexer.TokenColon {
		return "", stream.NewParseError(colon.Position(), "Expected colon")
	}
	return keyTok.Value, nil
}

// SkipValue consumes exactly one value without materializing it.
// Containers are skipped by tracking bracket balance; scalars are a
// single token.
func (p *Parser) SkipValue() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	switch tok.Kind {
	case lexer.TokenString, lexer.TokenNumber,
		lexer.TokenTrue, lexer.TokenFalse, lexer.TokenNull:
		return nil
	case lexer.TokenLBrace, lexer.TokenLBracket:
		depth := 1
		for depth > 0 {
			tok, err = p.lex.Next()
			if err != nil {
				return err
			}
			switch tok.Kind {
			case lexer.TokenLBrace, lexer.TokenLBracket:
				depth++
			case lexer.TokenRBrace, lexer.TokenRBracket:
				depth--
			case lexer.TokenEOF:
				return stream.NewUnexpectedEOFError(tok.Position())
			}
		}
		return nil
	case lexer.TokenEOF:
		return stream.NewUnexpectedEOFError(tok.Position())
	}
	return stream.NewUnexpectedTokenError(tok.Position(), tok.Kind)
}

// ExpectEOF verifies that no tokens remain after a top-level value.
func (p *Parser) ExpectEOF() error {
	tok, err := p.lex.Peek()
	if err != nil {
		return err
	}
	if tok.Kind != lexer.TokenEOF {
		return stream.NewUnexpectedTokenError(tok.Position(), tok.Kind)
	}
	return nil
}
