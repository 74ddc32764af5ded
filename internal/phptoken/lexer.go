package phptoken

import (
	"bytes"
	"strings"
)

type lexer struct {
	src  []byte
	pos  int
	line int
	toks []Token

	// property is set after -> and ?->, where PHP lexes any label as a
	// plain identifier even when it spells a reserved word.
	property bool
	// halt is set once __halt_compiler is seen; everything after the end
	// of that statement is raw data.
	halt bool
}

// Tokenize splits src into tokens. Concatenating the Text of every token
// reproduces src exactly.
func Tokenize(src []byte) []Token {
	l := &lexer{src: src, line: 1}
	for l.pos < len(l.src) {
		l.html()
		l.code()
	}
	return l.toks
}

func (l *lexer) emit(kind Kind, start int) {
	text := string(l.src[start:l.pos])
	l.toks = append(l.toks, Token{Kind: kind, Text: text, Line: l.line})
	l.line += strings.Count(text, "\n")
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

// html consumes inline HTML up to and including the next open tag.
func (l *lexer) html() {
	start := l.pos
	for i := l.pos; i+1 < len(l.src); i++ {
		if l.src[i] != '<' || l.src[i+1] != '?' {
			continue
		}
		if i > start {
			l.pos = i
			l.emit(InlineHTML, start)
		}
		kind := OpenTag
		if i+2 < len(l.src) && l.src[i+2] == '=' {
			kind = OpenTagWithEcho
		}
		l.pos = i + openTagLen(l.src[i:])
		l.emit(kind, i)
		return
	}
	l.pos = len(l.src)
	if l.pos > start {
		l.emit(InlineHTML, start)
	}
}

// openTagLen returns the length of the open tag at the start of b, which is
// known to begin with "<?". A long tag swallows one trailing newline or blank.
func openTagLen(b []byte) int {
	if len(b) >= 3 && b[2] == '=' {
		return 3
	}
	if len(b) >= 5 && strings.EqualFold(string(b[:5]), "<?php") {
		if len(b) == 5 {
			return 5
		}
		switch b[5] {
		case ' ', '\t', '\n':
			return 6
		case '\r':
			if len(b) > 6 && b[6] == '\n' {
				return 7
			}
			return 6
		}
	}
	return 2
}

// code consumes PHP code until a close tag or the end of input.
func (l *lexer) code() {
	for l.pos < len(l.src) {
		start := l.pos
		c := l.src[l.pos]
		keepProperty := false

		switch {
		case isSpace(c):
			for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
				l.pos++
			}
			l.emit(Whitespace, start)
			keepProperty = true

		case c == '?' && l.peek(1) == '>':
			l.pos += 2
			switch l.peek(0) {
			case '\n':
				l.pos++
			case '\r':
				l.pos++
				if l.peek(0) == '\n' {
					l.pos++
				}
			}
			l.emit(CloseTag, start)
			l.property = false
			if l.halt {
				l.rest()
			}
			return

		case c == '#' && l.peek(1) == '[':
			l.pos += 2
			l.emit(Char, start)

		case c == '#' || (c == '/' && l.peek(1) == '/'):
			l.lineComment()
			l.emit(Comment, start)

		case c == '/' && l.peek(1) == '*':
			kind := Comment
			if l.peek(2) == '*' && isSpace(l.peek(3)) {
				kind = DocComment
			}
			if end := bytes.Index(l.src[l.pos+2:], []byte("*/")); end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += 2 + end + 2
			}
			l.emit(kind, start)

		case c == '$' && isLabelStart(l.peek(1)):
			l.pos++
			l.label()
			l.emit(Variable, start)

		case c == '\'':
			l.singleQuoted()
			l.emit(ConstantString, start)

		case c == '"' || c == '`':
			l.pos++
			l.interpolated(c)
			l.emit(ConstantString, start)

		case c == '<' && l.peek(1) == '<' && l.peek(2) == '<' && l.heredoc():
			l.emit(ConstantString, start)

		case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
			l.number()
			l.emit(Number, start)

		case isLabelStart(c) || (c == '\\' && isLabelStart(l.peek(1))):
			l.name(start)

		case c == '\\':
			l.pos++
			l.emit(NsSeparator, start)

		case c == '-' && l.peek(1) == '>':
			l.pos += 2
			l.emit(Char, start)
			l.property = true
			keepProperty = true

		case c == '?' && l.peek(1) == '-' && l.peek(2) == '>':
			l.pos += 3
			l.emit(Char, start)
			l.property = true
			keepProperty = true

		case c == ':' && l.peek(1) == ':':
			l.pos += 2
			l.emit(Char, start)

		default:
			l.pos++
			l.emit(Char, start)
		}

		if !keepProperty {
			l.property = false
		}
		if l.halt && c == ';' {
			l.rest()
			return
		}
	}
}

// rest emits everything left as inline data.
func (l *lexer) rest() {
	start := l.pos
	l.pos = len(l.src)
	if l.pos > start {
		l.emit(InlineHTML, start)
	}
}

// name lexes an identifier, keyword or namespaced name starting at start.
func (l *lexer) name(start int) {
	if l.src[l.pos] == '\\' {
		l.pos++
	}
	l.label()
	for l.peek(0) == '\\' && isLabelStart(l.peek(1)) {
		l.pos++
		l.label()
	}
	text := string(l.src[start:l.pos])

	kind := String
	switch {
	case text[0] == '\\':
		kind = NameFullyQualified
	case strings.IndexByte(text, '\\') > 0:
		if strings.EqualFold(text[:strings.IndexByte(text, '\\')], "namespace") {
			kind = NameRelative
		} else {
			kind = NameQualified
		}
	case l.property:
	case isKeyword(text):
		kind = Keyword
	}
	l.emit(kind, start)

	if kind == Keyword && strings.EqualFold(text, "__halt_compiler") {
		l.halt = true
	}
}

func (l *lexer) label() {
	for l.pos < len(l.src) && isLabelChar(l.src[l.pos]) {
		l.pos++
	}
}

// lineComment consumes a # or // comment including its newline. A close tag
// ends the comment without being part of it.
func (l *lexer) lineComment() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == '\n':
			l.pos++
			return
		case c == '\r':
			l.pos++
			if l.peek(0) == '\n' {
				l.pos++
			}
			return
		case c == '?' && l.peek(1) == '>':
			return
		}
		l.pos++
	}
}

// singleQuoted consumes a '...' literal; l.pos is on the opening quote.
func (l *lexer) singleQuoted() {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\'':
			l.pos++
			return
		}
		l.pos++
	}
	l.pos = min(l.pos, len(l.src))
}

// interpolated consumes a "..." or `...` literal up to the closing quote q;
// l.pos is just past the opening quote. {$...} segments may hold nested
// literals that contain q.
func (l *lexer) interpolated(q byte) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
		case c == q:
			l.pos++
			return
		case c == '{' && l.peek(1) == '$':
			l.braced()
		default:
			l.pos++
		}
	}
	l.pos = min(l.pos, len(l.src))
}

// braced skips a {$expr} segment inside an interpolated literal.
func (l *lexer) braced() {
	depth := 0
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				l.pos++
				return
			}
		case '\'':
			l.singleQuoted()
			continue
		case '"':
			l.pos++
			l.interpolated('"')
			continue
		}
		l.pos++
	}
}

// heredoc consumes a heredoc or nowdoc when one starts at l.pos. It leaves
// l.pos untouched and returns false when "<<<" does not open one.
func (l *lexer) heredoc() bool {
	src := l.src
	i := l.pos + 3
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	var quote byte
	if i < len(src) && (src[i] == '\'' || src[i] == '"') {
		quote = src[i]
		i++
	}
	if i >= len(src) || !isLabelStart(src[i]) {
		return false
	}
	ls := i
	for i < len(src) && isLabelChar(src[i]) {
		i++
	}
	label := src[ls:i]
	if quote != 0 {
		if i >= len(src) || src[i] != quote {
			return false
		}
		i++
	}
	if i < len(src) && src[i] == '\r' {
		i++
	}
	if i >= len(src) || src[i] != '\n' {
		return false
	}
	i++

	// The closing label may be indented (PHP 7.3+) and must not be followed
	// by another label character.
	for lineStart := i; ; {
		j := lineStart
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if end := j + len(label); bytes.HasPrefix(src[j:], label) && (end == len(src) || !isLabelChar(src[end])) {
			l.pos = end
			return true
		}
		nl := bytes.IndexByte(src[lineStart:], '\n')
		if nl < 0 {
			break
		}
		lineStart += nl + 1
	}
	l.pos = len(src)
	return true
}

func (l *lexer) number() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isLabelChar(c) || c == '.':
			l.pos++
		case (c == '+' || c == '-') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') && isDigit(l.peek(1)):
			l.pos++
		default:
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLabelStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isLabelChar(c byte) bool {
	return isLabelStart(c) || isDigit(c)
}
