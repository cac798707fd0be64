package htmlpatch

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrDeclarationNotFound means no `const <name> = [` exists in any script.
	ErrDeclarationNotFound = errors.New("array declaration not found")
	// ErrAmbiguousDeclaration means the declaration appears more than once.
	ErrAmbiguousDeclaration = errors.New("array declaration found more than once")
	// ErrUnterminatedArray means the opening bracket has no matching close.
	ErrUnterminatedArray = errors.New("array literal is not terminated")
)

// span locates one declaration inside a script body.
//
//	const stockInfoList = [ ... ]
//	^start              ^open   ^end (exclusive)
type span struct {
	start int
	open  int
	end   int
}

func declarationPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`^const\s+` + regexp.QuoteMeta(name) + `\s*=\s*\[`)
}

// findDeclarations returns every `const <name> = [...]` in src that sits in
// code, skipping string literals and comments.
func findDeclarations(src string, decl *regexp.Regexp) ([]span, error) {
	var out []span
	for i := 0; i < len(src); {
		if j, ok := nonCodeEnd(src, i); ok {
			i = j
			continue
		}
		if src[i] == 'c' && (i == 0 || !isIdentByte(src[i-1])) {
			if loc := decl.FindStringIndex(src[i:]); loc != nil {
				open := i + loc[1] - 1
				end, err := matchBracket(src, open)
				if err != nil {
					return nil, err
				}
				out = append(out, span{start: i, open: open, end: end})
				i = end
				continue
			}
		}
		i++
	}
	return out, nil
}

// matchBracket returns the index just past the `]` that closes the `[` at
// open. Brackets inside string literals and comments are ignored.
func matchBracket(src string, open int) (int, error) {
	depth := 0
	for i := open; i < len(src); {
		if j, ok := nonCodeEnd(src, i); ok {
			i = j
			continue
		}
		switch src[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
		i++
	}
	return 0, ErrUnterminatedArray
}

// nonCodeEnd reports whether a string literal, comment or regular
// expression literal starts at i and, if so, the index just past it.
// Unterminated strings and comments run to the end of src. Template literal
// substitutions are treated as plain text.
func nonCodeEnd(src string, i int) (int, bool) {
	switch c := src[i]; {
	case c == '"' || c == '\'' || c == '`':
		for j := i + 1; j < len(src); j++ {
			switch src[j] {
			case '\\':
				j++
			case c:
				return j + 1, true
			}
		}
		return len(src), true
	case c == '/' && i+1 < len(src) && src[i+1] == '/':
		if k := strings.IndexByte(src[i:], '\n'); k >= 0 {
			return i + k + 1, true
		}
		return len(src), true
	case c == '/' && i+1 < len(src) && src[i+1] == '*':
		if k := strings.Index(src[i+2:], "*/"); k >= 0 {
			return i + 2 + k + 2, true
		}
		return len(src), true
	case c == '/' && regexAllowed(src, i):
		return regexEnd(src, i)
	}
	return i, false
}

// regexKeywords are the keywords after which a '/' opens a regular
// expression rather than a division.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// regexAllowed reports whether the '/' at i is in operand position, judged
// by the closest non-space byte before it. After an identifier, a number,
// a closing bracket or a string it is a division.
func regexAllowed(src string, i int) bool {
	j := i - 1
	for j >= 0 && isSpaceByte(src[j]) {
		j--
	}
	if j < 0 {
		return true
	}
	switch b := src[j]; {
	case b == ')' || b == ']' || b == '}' || b == '"' || b == '\'' || b == '`':
		return false
	case isIdentByte(b):
		k := j
		for k >= 0 && isIdentByte(src[k]) {
			k--
		}
		return regexKeywords[src[k+1:j+1]]
	}
	return true
}

// regexEnd returns the index just past the regular expression literal that
// opens at i. A '/' inside a character class does not close it. A literal
// cannot span lines; if none closes on this line the '/' is left as code.
func regexEnd(src string, i int) (int, bool) {
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n', '\r':
			return i, false
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j + 1, true
			}
		}
	}
	return i, false
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// isIdentByte reports whether b can continue a JavaScript identifier.
// Bytes of multi-byte UTF-8 sequences count as identifier bytes.
func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
