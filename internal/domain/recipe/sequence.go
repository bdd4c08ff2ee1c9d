package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SequenceKind tags how a sequence field was decoded.
type SequenceKind int

const (
	// SequenceStructured means the field was a list, either native or string-encoded.
	SequenceStructured SequenceKind = iota
	// SequenceFallback means the field did not parse as a list and was kept whole.
	SequenceFallback
)

func (k SequenceKind) String() string {
	if k == SequenceStructured {
		return "structured"
	}
	return "fallback"
}

// Sequence is the result of a lenient parse of an ingredients or instructions field.
type Sequence struct {
	Items []string
	Kind  SequenceKind
}

// Parsed reports whether the field decoded as a list.
func (s Sequence) Parsed() bool { return s.Kind == SequenceStructured }

// ParseSequenceJSON decodes a raw JSON field that is either a list of strings,
// a string holding a stringified list, or free text. It never fails: anything
// that does not decode as a list becomes a single-element fallback sequence.
func ParseSequenceJSON(raw json.RawMessage) Sequence {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Sequence{Items: []string{}, Kind: SequenceStructured}
	}

	switch trimmed[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(trimmed, &items); err == nil {
			return Sequence{Items: scalarsToStrings(items), Kind: SequenceStructured}
		}
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return ParseSequence(s)
		}
	}
	return fallback(string(trimmed))
}

// ParseSequence decodes a string field holding a list literal with single or
// double quoted elements ("['a', \"b\"]"). Anything else becomes a
// single-element fallback sequence; blank input yields an empty one.
func ParseSequence(s string) Sequence {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Sequence{Items: []string{}, Kind: SequenceFallback}
	}
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return fallback(trimmed)
	}

	var items []string
	if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
		return Sequence{Items: compact(items), Kind: SequenceStructured}
	}

	items, err := parseListLiteral(trimmed)
	if err != nil {
		return fallback(trimmed)
	}
	return Sequence{Items: compact(items), Kind: SequenceStructured}
}

func fallback(s string) Sequence {
	return Sequence{Items: []string{s}, Kind: SequenceFallback}
}

func scalarsToStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
			continue
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return compact(out)
}

// compact trims items and drops blanks.
func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseListLiteral parses a bracketed list of quoted string literals.
// Both quote styles and backslash escapes are accepted; a trailing comma is allowed.
func parseListLiteral(s string) ([]string, error) {
	p := &literalParser{src: s[1 : len(s)-1]}
	var items []string
	for {
		p.skipSpace()
		if p.done() {
			return items, nil
		}
		item, err := p.quoted()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		p.skipSpace()
		if p.done() {
			return items, nil
		}
		if p.src[p.pos] != ',' {
			return nil, fmt.Errorf("expected ',' at offset %d", p.pos)
		}
		p.pos++
	}
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) done() bool { return p.pos >= len(p.src) }

func (p *literalParser) skipSpace() {
	for !p.done() && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) quoted() (string, error) {
	q := p.src[p.pos]
	if q != '\'' && q != '"' {
		return "", fmt.Errorf("expected quote at offset %d", p.pos)
	}
	p.pos++

	var b strings.Builder
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", fmt.Errorf("dangling escape at offset %d", p.pos)
			}
			n, err := p.escape()
			if err != nil {
				return "", err
			}
			b.WriteString(n)
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *literalParser) escape() (string, error) {
	c := p.src[p.pos+1]
	p.pos += 2
	switch c {
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case 'r':
		return "\r", nil
	case '\\', '\'', '"':
		return string(c), nil
	case 'x':
		return p.hex(2)
	case 'u':
		return p.hex(4)
	default:
		// unknown escapes are kept verbatim
		return "\\" + string(c), nil
	}
}

func (p *literalParser) hex(n int) (string, error) {
	if p.pos+n > len(p.src) {
		return "", fmt.Errorf("short hex escape at offset %d", p.pos)
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return "", fmt.Errorf("bad hex escape: %w", err)
	}
	p.pos += n
	return string(rune(v)), nil
}
