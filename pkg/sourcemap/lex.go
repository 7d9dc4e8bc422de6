package sourcemap

import (
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string // identifier, punctuation, or decoded string value
	line int
}

// lex splits Luau source into the tokens require scanning needs. Comments
// are dropped; string literals (quoted, long-bracket and interpolated) are
// decoded so their contents never look like code. Operators are kept as
// single-character punctuation except "::" and "..", which are merged so
// type casts and concatenation are not mistaken for method calls or
// indexing.
func lex(src string) []token {
	l := lexer{src: src, line: 1}
	for {
		t := l.next()
		l.toks = append(l.toks, t)
		if t.kind == tokEOF {
			return l.toks
		}
	}
}

type lexer struct {
	src  string
	pos  int
	line int
	toks []token
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n' || c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.advance(1)
		case c == '-' && l.peek(1) == '-':
			l.comment()
		case isIdentStart(c):
			start, line := l.pos, l.line
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			return token{kind: tokIdent, text: l.src[start:l.pos], line: line}
		case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
			line := l.line
			l.number()
			return token{kind: tokNumber, line: line}
		case c == '"' || c == '\'' || c == '`':
			line := l.line
			return token{kind: tokString, text: l.quoted(c), line: line}
		case c == '[' && (l.peek(1) == '[' || l.peek(1) == '='):
			line := l.line
			if s, ok := l.longBracket(); ok {
				return token{kind: tokString, text: s, line: line}
			}
			l.advance(1)
			return token{kind: tokPunct, text: "[", line: line}
		case (c == ':' && l.peek(1) == ':') || (c == '.' && l.peek(1) == '.'):
			line := l.line
			text := l.src[l.pos : l.pos+2]
			l.advance(2)
			for l.peek(0) == '.' {
				l.advance(1)
			}
			return token{kind: tokPunct, text: text, line: line}
		default:
			line := l.line
			l.advance(1)
			return token{kind: tokPunct, text: string(c), line: line}
		}
	}
	return token{kind: tokEOF, line: l.line}
}

func (l *lexer) comment() {
	l.advance(2)
	if l.peek(0) == '[' {
		if _, ok := l.longBracket(); ok {
			return
		}
	}
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// longBracket consumes [[...]] or [==[...]==] at the cursor. It reports
// false, consuming nothing, if the cursor is not at an opening bracket.
func (l *lexer) longBracket() (string, bool) {
	i := l.pos + 1
	level := 0
	for i < len(l.src) && l.src[i] == '=' {
		level++
		i++
	}
	if i >= len(l.src) || l.src[i] != '[' {
		return "", false
	}
	closing := "]" + strings.Repeat("=", level) + "]"
	bodyStart := i + 1
	end := strings.Index(l.src[bodyStart:], closing)
	if end < 0 {
		body := l.src[bodyStart:]
		l.advance(len(l.src) - l.pos)
		return body, true
	}
	body := l.src[bodyStart : bodyStart+end]
	l.advance(bodyStart + end + len(closing) - l.pos)
	return strings.TrimPrefix(body, "\n"), true
}

func (l *lexer) quoted(q byte) string {
	l.advance(1)
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == q:
			l.advance(1)
			return b.String()
		case c == '\n' && q != '`':
			// Unterminated string; stop at the line end.
			return b.String()
		case c == '\\' && l.pos+1 < len(l.src):
			b.WriteByte(unescape(l.src[l.pos+1]))
			l.advance(2)
		default:
			b.WriteByte(c)
			l.advance(1)
		}
	}
	return b.String()
}

func (l *lexer) number() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isIdentPart(c) || c == '.' {
			l.pos++
			continue
		}
		if (c == '+' || c == '-') && l.pos > 0 && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') {
			l.pos++
			continue
		}
		return
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	return c
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
