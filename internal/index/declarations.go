package index

import (
	"strings"

	"github.com/kamusis/classmap/internal/phptoken"
)

// Declaration is a named type declared in a source file.
type Declaration struct {
	Namespace string
	Name      string
	Kind      string // class, interface, trait or enum
	Line      int
}

// Key returns the fully-qualified name used as the map key.
func (d Declaration) Key() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + `\` + d.Name
}

// Declarations tokenizes src and returns the types it declares in source
// order.
func Declarations(src []byte) []Declaration {
	return ScanTokens(phptoken.Tokenize(src))
}

// ScanTokens walks toks with a three-token window looking for
// "namespace <name>" and "class|interface|trait|enum <name>".
// Only whitespace may separate the keyword from the name, which also rules
// out anonymous classes.
func ScanTokens(toks []phptoken.Token) []Declaration {
	var (
		namespace string
		out       []Declaration
	)
	for i := 2; i < len(toks); i++ {
		head, gap, cur := toks[i-2], toks[i-1], toks[i]

		// "namespace {" opens the global namespace.
		if cur.IsKeyword("namespace") && opensBlock(toks, i+1) {
			namespace = ""
			continue
		}
		if gap.Kind != phptoken.Whitespace {
			continue
		}

		if head.IsKeyword("namespace") {
			if cur.Kind != phptoken.String && cur.Kind != phptoken.NameQualified {
				continue
			}
			namespace = cur.Text
			for j := i + 2; j < len(toks) && toks[j-1].Kind == phptoken.NsSeparator && toks[j].Kind == phptoken.String; j += 2 {
				namespace += `\` + toks[j].Text
			}
			continue
		}

		if kind := declarationKind(head); kind != "" && cur.Kind == phptoken.String {
			out = append(out, Declaration{Namespace: namespace, Name: cur.Text, Kind: kind, Line: cur.Line})
		}
	}
	return out
}

func declarationKind(t phptoken.Token) string {
	switch {
	case t.IsKeyword("class"), t.IsKeyword("interface"), t.IsKeyword("trait"):
		return strings.ToLower(t.Text)
	case t.Kind == phptoken.String && strings.EqualFold(t.Text, "enum"):
		return "enum"
	}
	return ""
}

// opensBlock reports whether the first token at or after i that is not
// whitespace or a comment is "{".
func opensBlock(toks []phptoken.Token, i int) bool {
	for ; i < len(toks); i++ {
		switch toks[i].Kind {
		case phptoken.Whitespace, phptoken.Comment, phptoken.DocComment:
			continue
		case phptoken.Char:
			return toks[i].Text == "{"
		}
		return false
	}
	return false
}
