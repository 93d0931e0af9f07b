package sqlite

import (
	"strings"
)

// splitStatements splits a script into statements on top-level semicolons.
// Semicolons inside quotes, comments and trigger bodies (BEGIN ... END) do
// not end a statement. Statements are returned without the trailing
// semicolon; chunks holding only comments or whitespace are dropped.
func splitStatements(script string) []string {
	var statements []string
	start := 0
	hasCode := false
	sawTrigger := false
	blockDepth := 0
	caseDepth := 0

	flush := func(end int) {
		if hasCode {
			statements = append(statements, strings.TrimSpace(script[start:end]))
		}
		start = end + 1
		hasCode = false
		sawTrigger = false
		blockDepth = 0
		caseDepth = 0
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			hasCode = true
			i = skipQuoted(script, i, ch)
		case ch == '[':
			hasCode = true
			if end := strings.IndexByte(script[i:], ']'); end >= 0 {
				i += end
			} else {
				i = len(script) - 1
			}
		case ch == '-' && i+1 < len(script) && script[i+1] == '-':
			if end := strings.IndexByte(script[i:], '\n'); end >= 0 {
				i += end
			} else {
				i = len(script) - 1
			}
		case ch == '/' && i+1 < len(script) && script[i+1] == '*':
			if end := strings.Index(script[i+2:], "*/"); end >= 0 {
				i += end + 3
			} else {
				i = len(script) - 1
			}
		case ch == ';':
			if blockDepth == 0 {
				flush(i)
			}
		case isWordStart(ch):
			hasCode = true
			j := i + 1
			for j < len(script) && isWordByte(script[j]) {
				j++
			}
			switch strings.ToUpper(script[i:j]) {
			case "TRIGGER":
				sawTrigger = true
			case "BEGIN":
				if sawTrigger {
					blockDepth++
				}
			case "CASE":
				if blockDepth > 0 {
					caseDepth++
				}
			case "END":
				switch {
				case caseDepth > 0:
					caseDepth--
				case blockDepth > 0:
					blockDepth--
				}
			}
			i = j - 1
		case ch > ' ':
			hasCode = true
		}
	}
	flush(len(script))
	return statements
}

// skipQuoted returns the index of the closing quote of the literal opened
// at i. A doubled quote is an escaped quote.
func skipQuoted(s string, i int, quote byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j
	}
	return len(s) - 1
}

func isWordStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isWordByte(c byte) bool {
	return isWordStart(c) || c >= '0' && c <= '9' || c == '$'
}
