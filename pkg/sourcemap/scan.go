package sourcemap

import (
	"strings"
)

// Require is one require call whose argument is an instance path.
type Require struct {
	// Path is the root identifier ("script", "game", ...) followed by the
	// instance names indexed from it. Local aliases are already expanded.
	Path []string
	// Expr is the argument as written, for diagnostics.
	Expr string
	Line int
}

// childLookups are the methods that index a child by name.
var childLookups = map[string]bool{
	"WaitForChild":   true,
	"FindFirstChild": true,
	"GetService":     true,
}

// ScanSource finds the require calls in Luau source. Arguments that are not
// instance paths (asset ids, strings, calls) are skipped. Simple local
// aliases such as
//
//	local Shared = game:GetService("ReplicatedStorage").Shared
//
// are tracked in file order and expanded in later requires.
func ScanSource(src string) []Require {
	toks := lex(src)
	aliases := make(map[string][]string)
	var out []Require

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind != tokIdent {
			continue
		}
		switch {
		case t.text == "local" && isIdent(toks, i+1) && isPunct(toks, i+2, "="):
			path, next, ok := parsePath(toks, i+3)
			if ok && endsExpression(toks, next) {
				aliases[toks[i+1].text] = expand(aliases, path)
			} else {
				delete(aliases, toks[i+1].text)
			}
		case t.text == "require" && !isPunct(toks, i-1, ".") && !isPunct(toks, i-1, ":") && isPunct(toks, i+1, "("):
			path, next, ok := parsePath(toks, i+2)
			if !ok || !(isPunct(toks, next, ")") || isPunct(toks, next, "::")) {
				continue
			}
			out = append(out, Require{
				Path: expand(aliases, path),
				Expr: strings.Join(path, "."),
				Line: t.line,
			})
		}
	}
	return out
}

// parsePath reads Name(.Name | ["Name"] | :WaitForChild("Name"))* starting
// at toks[i]. It returns the names and the index after the path.
func parsePath(toks []token, i int) ([]string, int, bool) {
	if !isIdent(toks, i) || keywords[toks[i].text] {
		return nil, i, false
	}
	path := []string{toks[i].text}
	i++
	for {
		switch {
		case isPunct(toks, i, ".") && isIdent(toks, i+1):
			path = append(path, toks[i+1].text)
			i += 2
		case isPunct(toks, i, "[") && isKind(toks, i+1, tokString) && isPunct(toks, i+2, "]"):
			path = append(path, toks[i+1].text)
			i += 3
		case isPunct(toks, i, ":") && isIdent(toks, i+1) && childLookups[toks[i+1].text] &&
			isPunct(toks, i+2, "(") && isKind(toks, i+3, tokString):
			name := toks[i+3].text
			end, ok := closeParen(toks, i+4)
			if !ok {
				return path, i, true
			}
			path = append(path, name)
			i = end + 1
		default:
			return path, i, true
		}
	}
}

// closeParen returns the index of the ")" closing a call whose "(" was
// already consumed, skipping extra arguments such as a WaitForChild timeout.
func closeParen(toks []token, i int) (int, bool) {
	depth := 0
	for ; i < len(toks) && toks[i].kind != tokEOF; i++ {
		if toks[i].kind != tokPunct {
			continue
		}
		switch toks[i].text {
		case "(":
			depth++
		case ")":
			if depth == 0 {
				return i, true
			}
			depth--
		}
	}
	return i, false
}

// endsExpression reports whether toks[i] cannot continue the expression
// before it, so a path followed by it is a plain value and not a call.
func endsExpression(toks []token, i int) bool {
	if i >= len(toks) {
		return true
	}
	t := toks[i]
	switch t.kind {
	case tokEOF, tokIdent:
		return true
	case tokString:
		return false
	case tokPunct:
		switch t.text {
		case "(", "{", ".", ":", "[", "..":
			return false
		}
		return true
	}
	return true
}

func expand(aliases map[string][]string, path []string) []string {
	base, ok := aliases[path[0]]
	if !ok {
		return path
	}
	out := make([]string, 0, len(base)+len(path)-1)
	out = append(out, base...)
	return append(out, path[1:]...)
}

func isKind(toks []token, i int, k tokenKind) bool {
	return i >= 0 && i < len(toks) && toks[i].kind == k
}

func isIdent(toks []token, i int) bool { return isKind(toks, i, tokIdent) }

func isPunct(toks []token, i int, p string) bool {
	return isKind(toks, i, tokPunct) && toks[i].text == p
}

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true, "end": true,
	"false": true, "for": true, "function": true, "if": true, "in": true, "local": true,
	"nil": true, "not": true, "or": true, "repeat": true, "return": true, "then": true,
	"true": true, "until": true, "while": true, "continue": true,
}
