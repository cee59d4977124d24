package agtype

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Decode parses agtype text returned by AGE into a Value.
//
// The format is JSON with extensions: values may carry a trailing
// ::annotation (::vertex, ::edge, ::path, ::numeric), map keys may be
// bare identifiers, and strings may use single or double quotes. The
// decoder keeps integers as int64 and never turns numeric payloads into
// strings, which is the contract the rest of the system depends on.
//
//	v, err := agtype.Decode(`{"id": 0, "label": "Person", "properties": {"age": 30}}::vertex`)
func Decode(input string) (Value, error) {
	p := &parser{src: input}
	v, err := p.parseValue()
	if err != nil {
		return Null, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Null, fmt.Errorf("agtype: trailing data at offset %d", p.pos)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("agtype: "+format+" at offset %d", append(args, p.pos)...)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		p.pos++
	}
}

func (p *parser) parseValue() (Value, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Null, p.errf("unexpected end of input")
	}

	var v Value
	var err error
	switch c := p.src[p.pos]; {
	case c == '{':
		v, err = p.parseMap()
	case c == '[':
		v, err = p.parseArray()
	case c == '"' || c == '\'':
		var s string
		s, err = p.parseString()
		v = StringValue(s)
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		v, err = p.parseNumber()
	default:
		v, err = p.parseWord()
	}
	if err != nil {
		return Null, err
	}

	// Optional ::annotation suffix, e.g. {...}::vertex or 1::numeric.
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], "::") {
		p.pos += 2
		start := p.pos
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == start {
			return Null, p.errf("empty type annotation")
		}
		v.ann = p.src[start:p.pos]
	}
	return v, nil
}

func (p *parser) parseWord() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	switch word := p.src[start:p.pos]; word {
	case "true":
		return BoolValue(true), nil
	case "false":
		return BoolValue(false), nil
	case "null":
		return Null, nil
	default:
		p.pos = start
		return Null, p.errf("unexpected token %q", word)
	}
}

func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if c := p.src[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
			p.pos++
		case c == '.':
			isFloat = true
			p.pos++
		case c == 'e' || c == 'E':
			isFloat = true
			p.pos++
			if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	tok := p.src[start:p.pos]
	if !isFloat {
		if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return IntValue(i), nil
		}
		// Out of int64 range; fall through to float parsing.
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return Null, p.errf("invalid number %q", tok)
	}
	return FloatValue(f), nil
}

func (p *parser) parseString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errf("unterminated escape")
			}
			esc := p.src[p.pos]
			p.pos++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '/', '\\', '"', '\'':
				sb.WriteByte(esc)
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				sb.WriteRune(r)
			default:
				return "", p.errf("invalid escape \\%c", esc)
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
	return "", p.errf("unterminated string")
}

func (p *parser) parseUnicodeEscape() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errf("truncated \\u escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errf("invalid \\u escape")
	}
	p.pos += 4
	r := rune(n)
	// Surrogate pair.
	if utf16.IsSurrogate(r) && strings.HasPrefix(p.src[p.pos:], `\u`) {
		p.pos += 2
		if p.pos+4 > len(p.src) {
			return 0, p.errf("truncated \\u escape")
		}
		n2, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
		if err != nil {
			return 0, p.errf("invalid \\u escape")
		}
		p.pos += 4
		return utf16.DecodeRune(r, rune(n2)), nil
	}
	return r, nil
}

func (p *parser) parseArray() (Value, error) {
	p.pos++ // consume '['
	items := []Value{}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return ArrayValue(items...), nil
	}
	for {
		item, err := p.parseValue()
		if err != nil {
			return Null, err
		}
		items = append(items, item)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Null, p.errf("unterminated array")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return ArrayValue(items...), nil
		default:
			return Null, p.errf("expected ',' or ']'")
		}
	}
}

func (p *parser) parseMap() (Value, error) {
	p.pos++ // consume '{'
	entries := map[string]Value{}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return MapValue(entries), nil
	}
	for {
		p.skipSpace()
		key, err := p.parseKey()
		if err != nil {
			return Null, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return Null, p.errf("expected ':' after key %q", key)
		}
		p.pos++
		val, err := p.parseValue()
		if err != nil {
			return Null, err
		}
		entries[key] = val
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Null, p.errf("unterminated map")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return MapValue(entries), nil
		default:
			return Null, p.errf("expected ',' or '}'")
		}
	}
}

func (p *parser) parseKey() (string, error) {
	if p.pos >= len(p.src) {
		return "", p.errf("unexpected end of input")
	}
	if c := p.src[p.pos]; c == '"' || c == '\'' {
		return p.parseString()
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errf("expected map key")
	}
	return p.src[start:p.pos], nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9'
}
