package gemparse

import "github.com/navikt/gemlint/internal/gemtoken"

// ParseError is the same structured error kind the tokenizer produces;
// lexer and parser errors share one type.
type ParseError = gemtoken.Error

func (p *parser) fail(message string) error {
	tok := p.cur()
	return &ParseError{
		Message:  message,
		Offset:   tok.Start,
		Line:     tok.Line,
		Column:   tok.Column,
		PrevByte: p.prevFirstByte(),
	}
}

// prevFirstByte returns the first byte of the previously consumed token's
// text, or 0 if there was none.
func (p *parser) prevFirstByte() byte {
	if p.pos == 0 {
		return 0
	}
	prev := p.tokens[p.pos-1]
	if len(prev.Text) == 0 {
		return 0
	}
	return prev.Text[0]
}
