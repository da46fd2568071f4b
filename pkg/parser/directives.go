package parser

import (
	"encoding/binary"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/lexer"
)

// parseDirective handles every directive except the "NAME: .imm VALUE"
// form, which Next recognizes via lookahead right after a LabelDef.
// Returns (item, true, nil) when the directive produces a ParsedItem
// (section change or data), (zero, false, nil) when it only mutates the
// symbol table (.global/.import).
func (p *Parser) parseDirective(tok lexer.Tok) (ParsedItem, bool, error) {
	switch tok.Text {
	case "global", "export":
		name, err := p.expectName()
		if err != nil {
			return ParsedItem{}, false, err
		}
		p.table.Export(name)
		if err := p.expectLineEnd(); err != nil {
			return ParsedItem{}, false, err
		}
		return ParsedItem{}, false, nil

	case "import":
		name, err := p.expectName()
		if err != nil {
			return ParsedItem{}, false, err
		}
		p.table.Import(name)
		if err := p.expectLineEnd(); err != nil {
			return ParsedItem{}, false, err
		}
		return ParsedItem{}, false, nil

	case "imm":
		return ParsedItem{}, false, p.errorf("line %d: .imm without a preceding label", tok.Span.Line)

	case "text", "data", "bss":
		return p.changeSection("." + tok.Text)

	case "section":
		name, err := p.expectName()
		if err != nil {
			return ParsedItem{}, false, err
		}
		return p.changeSection(normalizeSectionName(name))

	case "byte", "ascii":
		return p.parseByteData(tok)

	case "word":
		return p.parseWordData(tok)

	default:
		return ParsedItem{}, false, p.errorf("line %d: unknown directive %q", tok.Span.Line, tok.Text)
	}
}

func (p *Parser) changeSection(name string) (ParsedItem, bool, error) {
	p.currentSection = name
	p.pos = 0
	p.noteSection(name)
	if err := p.expectLineEnd(); err != nil {
		return ParsedItem{}, false, err
	}
	return ParsedItem{Kind: ItemSectionChange, Section: name}, true, nil
}

func (p *Parser) expectName() (string, error) {
	tok, err := p.advance()
	if err != nil {
		return "", err
	}
	switch tok.Kind {
	case lexer.KindLabelRef, lexer.KindMnemonic:
		return tok.Text, nil
	default:
		return "", p.errorf("line %d: expected a name, found %s", tok.Span.Line, tok.Kind)
	}
}

// expectImmediateLiteral requires the next token to be a literal immediate
// (not a label) and returns its value.
func (p *Parser) expectImmediateLiteral() (int32, error) {
	tok, err := p.advance()
	if err != nil {
		return 0, err
	}
	if tok.Kind != lexer.KindImmediate {
		return 0, p.errorf("line %d: expected an immediate value, found %s", tok.Span.Line, tok.Kind)
	}
	return tok.Immediate.Value, nil
}

func (p *Parser) parseByteData(tok lexer.Tok) (ParsedItem, bool, error) {
	var out []byte
	for {
		v, err := p.expectImmediateLiteral()
		if err != nil {
			return ParsedItem{}, false, err
		}
		if v < -128 || v > 255 {
			return ParsedItem{}, false, wrapRange(atlaserr.ErrImmediateOutOfRange, tok.Span.Line, v, -128, 255)
		}
		out = append(out, byte(v))

		more, err := p.consumeIfComma()
		if err != nil {
			return ParsedItem{}, false, err
		}
		if !more {
			break
		}
	}
	if err := p.expectLineEnd(); err != nil {
		return ParsedItem{}, false, err
	}
	p.pos += uint32(len(out))
	return ParsedItem{Kind: ItemData, Data: out}, true, nil
}

func (p *Parser) parseWordData(tok lexer.Tok) (ParsedItem, bool, error) {
	var out []byte
	for {
		v, err := p.expectImmediateLiteral()
		if err != nil {
			return ParsedItem{}, false, err
		}
		if v < -32768 || v > 65535 {
			return ParsedItem{}, false, wrapRange(atlaserr.ErrImmediateOutOfRange, tok.Span.Line, v, -32768, 65535)
		}
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(v))
		out = append(out, buf[:]...)

		more, err := p.consumeIfComma()
		if err != nil {
			return ParsedItem{}, false, err
		}
		if !more {
			break
		}
	}
	if err := p.expectLineEnd(); err != nil {
		return ParsedItem{}, false, err
	}
	p.pos += uint32(len(out))
	return ParsedItem{Kind: ItemData, Data: out}, true, nil
}

func (p *Parser) consumeIfComma() (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	if tok.Kind != lexer.KindComma {
		return false, nil
	}
	_, err = p.advance()
	return true, err
}
