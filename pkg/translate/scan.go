package translate

import (
	"strings"
	"unicode"
)

// Query-text scanning helpers for the conformance checks. All matching
// is done outside string literals so user data inside a query can never
// trigger a rewrite or a rejection.

// literalMask marks every byte position that lies inside a single- or
// double-quoted string literal, including the quotes themselves.
// Backslash escapes are honored, so an escaped quote does not terminate
// the literal.
func literalMask(s string) []bool {
	mask := make([]bool, len(s))
	inString := false
	quote := byte(0)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			if inString {
				mask[i] = true
				mask[i+1] = true
			}
			i++
			continue
		}
		if c == '\'' || c == '"' {
			if !inString {
				inString = true
				quote = c
			} else if c != quote {
				// Other quote kind inside a literal is just content.
				mask[i] = true
				continue
			} else {
				inString = false
				quote = 0
			}
			mask[i] = true
			continue
		}
		if inString {
			mask[i] = true
		}
	}
	return mask
}

func isWordBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

// keywordIndex finds a keyword at word boundaries, case-insensitively,
// skipping string literals. A ':' on the left is not a boundary so
// labels like :Return never match the RETURN keyword. Returns -1 if not
// found.
func keywordIndex(s, keyword string, from int) int {
	upper := strings.ToUpper(s)
	kw := strings.ToUpper(keyword)
	mask := literalMask(s)

	idx := from
	for idx < len(upper) {
		pos := strings.Index(upper[idx:], kw)
		if pos == -1 {
			return -1
		}
		abs := idx + pos
		idx = abs + 1

		if mask[abs] {
			continue
		}
		leftOK := abs == 0 || (upper[abs-1] != ':' && isWordBoundary(rune(upper[abs-1])))
		end := abs + len(kw)
		rightOK := end >= len(upper) || isWordBoundary(rune(upper[end]))
		if leftOK && rightOK {
			return abs
		}
	}
	return -1
}

// lastKeywordIndex finds the final occurrence of a keyword outside
// string literals.
func lastKeywordIndex(s, keyword string) int {
	last := -1
	from := 0
	for {
		pos := keywordIndex(s, keyword, from)
		if pos == -1 {
			return last
		}
		last = pos
		from = pos + 1
	}
}

// indexOutsideLiterals does exact substring matching skipping string
// literals. Useful for symbols like "--" that have no word boundaries.
func indexOutsideLiterals(s, substr string, from int) int {
	mask := literalMask(s)
	idx := from
	for idx <= len(s)-len(substr) {
		pos := strings.Index(s[idx:], substr)
		if pos == -1 {
			return -1
		}
		abs := idx + pos
		idx = abs + 1

		inside := false
		for i := 0; i < len(substr); i++ {
			if mask[abs+i] {
				inside = true
				break
			}
		}
		if !inside {
			return abs
		}
	}
	return -1
}

// replaceOutsideLiterals replaces every occurrence of old with new
// outside string literals, recomputing the mask after each replacement.
func replaceOutsideLiterals(s, old, new string) string {
	from := 0
	for {
		pos := indexOutsideLiterals(s, old, from)
		if pos == -1 {
			return s
		}
		s = s[:pos] + new + s[pos+len(old):]
		from = pos + len(new)
	}
}

// splitProjection splits a RETURN projection on top-level commas,
// respecting parens, brackets, braces, and string literals.
func splitProjection(s string) []string {
	mask := literalMask(s)
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		if mask[i] {
			continue
		}
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}
