// Package phptoken splits PHP source into a flat token stream.
//
// The tokenizer follows the PHP 8 lexer closely enough for declaration
// scanning: it separates inline HTML from code, classifies comments, string
// literals, heredocs and variables so that their contents never look like
// code, and emits namespaced names as single tokens the way PHP 8 does
// (T_NAME_QUALIFIED and friends). It does not build an AST and does not
// report syntax errors; malformed input always produces some token stream.
package phptoken

import "strings"

// Kind classifies a token.
type Kind int

const (
	InlineHTML Kind = iota
	OpenTag
	OpenTagWithEcho
	CloseTag
	Whitespace
	Comment
	DocComment
	Keyword
	String             // bare identifier (T_STRING)
	NameQualified      // Foo\Bar
	NameFullyQualified // \Foo\Bar
	NameRelative       // namespace\Foo
	NsSeparator
	Variable
	ConstantString // quoted literal, heredoc or nowdoc
	Number
	Char // punctuation and operators
)

var kindNames = [...]string{
	InlineHTML:         "InlineHTML",
	OpenTag:            "OpenTag",
	OpenTagWithEcho:    "OpenTagWithEcho",
	CloseTag:           "CloseTag",
	Whitespace:         "Whitespace",
	Comment:            "Comment",
	DocComment:         "DocComment",
	Keyword:            "Keyword",
	String:             "String",
	NameQualified:      "NameQualified",
	NameFullyQualified: "NameFullyQualified",
	NameRelative:       "NameRelative",
	NsSeparator:        "NsSeparator",
	Variable:           "Variable",
	ConstantString:     "ConstantString",
	Number:             "Number",
	Char:               "Char",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Token is one lexeme. Text is the exact source slice.
type Token struct {
	Kind Kind
	Text string
	Line int
}

// IsKeyword reports whether t is the reserved word kw, compared
// case-insensitively as PHP does.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Keyword && strings.EqualFold(t.Text, kw)
}

// keywords are the reserved words the lexer reports as Keyword. Contextual
// words such as "enum", "readonly" in some positions, or "mixed" stay String.
var keywords = map[string]struct{}{
	"__halt_compiler": {}, "abstract": {}, "and": {}, "array": {}, "as": {},
	"break": {}, "callable": {}, "case": {}, "catch": {}, "class": {},
	"clone": {}, "const": {}, "continue": {}, "declare": {}, "default": {},
	"die": {}, "do": {}, "echo": {}, "else": {}, "elseif": {}, "empty": {},
	"enddeclare": {}, "endfor": {}, "endforeach": {}, "endif": {},
	"endswitch": {}, "endwhile": {}, "eval": {}, "exit": {}, "extends": {},
	"final": {}, "finally": {}, "fn": {}, "for": {}, "foreach": {},
	"function": {}, "global": {}, "goto": {}, "if": {}, "implements": {},
	"include": {}, "include_once": {}, "instanceof": {}, "insteadof": {},
	"interface": {}, "isset": {}, "list": {}, "match": {}, "namespace": {},
	"new": {}, "or": {}, "print": {}, "private": {}, "protected": {},
	"public": {}, "readonly": {}, "require": {}, "require_once": {},
	"return": {}, "static": {}, "switch": {}, "throw": {}, "trait": {},
	"try": {}, "unset": {}, "use": {}, "var": {}, "while": {}, "xor": {},
	"yield": {},
}

func isKeyword(word string) bool {
	_, ok := keywords[strings.ToLower(word)]
	return ok
}
