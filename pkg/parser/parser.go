// Package parser consumes a lexer.Lexer and produces a lazy stream of
// ParsedItem values while accumulating a SymbolTable, per spec §4.3.
package parser

import (
	"fmt"
	"strings"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/lexer"
)

// Parser drives a lexer.Lexer one logical line at a time. It owns the
// symbol table it accumulates; callers that need the table after parsing
// should read Table() once Next reports completion.
type Parser struct {
	lex *lexer.Lexer

	lookahead    *lexer.Tok // one-token pushback buffer
	sourceFile   string
	currentSection string
	pos          uint32
	sectionOrder []string
	seenSection  map[string]bool

	table *SymbolTable
}

// New returns a Parser reading from src. sourceFile is carried into every
// ParsedInstruction for diagnostics; it may be empty.
func New(src string, sourceFile string) *Parser {
	p := &Parser{
		lex:            lexer.New(src),
		sourceFile:     sourceFile,
		currentSection: ".text",
		table:          NewSymbolTable(),
		seenSection:    map[string]bool{},
	}
	p.noteSection(".text")
	return p
}

// Table returns the parser's accumulating symbol table. Safe to call at
// any point; the assembler snapshots it only after Next reports (done).
func (p *Parser) Table() *SymbolTable { return p.table }

// SectionOrder returns section names in the order they first appeared,
// per the determinism rule in spec §4.4.
func (p *Parser) SectionOrder() []string { return p.sectionOrder }

func (p *Parser) noteSection(name string) {
	if !p.seenSection[name] {
		p.seenSection[name] = true
		p.sectionOrder = append(p.sectionOrder, name)
	}
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{atlaserr.ErrParse}, args...)...)
}

func (p *Parser) advance() (lexer.Tok, error) {
	if p.lookahead != nil {
		t := *p.lookahead
		p.lookahead = nil
		return t, nil
	}
	return p.lex.Next()
}

func (p *Parser) peek() (lexer.Tok, error) {
	if p.lookahead == nil {
		t, err := p.lex.Next()
		if err != nil {
			return lexer.Tok{}, err
		}
		p.lookahead = &t
	}
	return *p.lookahead, nil
}

// Next returns the next parsed item. done is true (with a zero item and
// nil error) once the source is exhausted.
func (p *Parser) Next() (item ParsedItem, done bool, err error) {
	for {
		tok, err := p.advance()
		if err != nil {
			return ParsedItem{}, false, err
		}

		switch tok.Kind {
		case lexer.KindEoF:
			return ParsedItem{}, true, nil

		case lexer.KindNewLine:
			continue

		case lexer.KindDirective:
			item, emitted, err := p.parseDirective(tok)
			if err != nil {
				return ParsedItem{}, false, err
			}
			if emitted {
				return item, false, nil
			}
			continue

		case lexer.KindLabelDef:
			next, err := p.peek()
			if err != nil {
				return ParsedItem{}, false, err
			}
			if next.Kind == lexer.KindDirective && next.Text == "imm" {
				if _, err := p.advance(); err != nil { // consume ".imm"
					return ParsedItem{}, false, err
				}
				value, err := p.expectImmediateLiteral()
				if err != nil {
					return ParsedItem{}, false, err
				}
				p.table.Define(tok.Text, Symbol{Kind: SymbolConstant, Constant: uint16(value)})
				if err := p.expectLineEnd(); err != nil {
					return ParsedItem{}, false, err
				}
				continue
			}

			p.table.Define(tok.Text, Symbol{Kind: SymbolLabel, Offset: p.pos, Section: p.currentSection})
			continue // a label may prefix an instruction on the same line

		case lexer.KindMnemonic:
			inst, err := p.parseInstruction(tok)
			if err != nil {
				return ParsedItem{}, false, err
			}
			if err := p.expectLineEnd(); err != nil {
				return ParsedItem{}, false, err
			}
			p.pos += 2
			return ParsedItem{Kind: ItemInstruction, Instruction: inst}, false, nil

		default:
			return ParsedItem{}, false, p.errorf("line %d: unexpected %s", tok.Span.Line, tok.Kind)
		}
	}
}

// expectLineEnd requires the next token to be a NewLine or EoF, without
// consuming EoF (so a later Next call still observes it).
func (p *Parser) expectLineEnd() error {
	tok, err := p.peek()
	if err != nil {
		return err
	}
	if tok.Kind == lexer.KindEoF {
		return nil
	}
	if tok.Kind != lexer.KindNewLine {
		return p.errorf("line %d: expected end of line, found %s", tok.Span.Line, tok.Kind)
	}
	_, err = p.advance()
	return err
}

func normalizeSectionName(name string) string {
	if strings.HasPrefix(name, ".") {
		return name
	}
	return "." + name
}
