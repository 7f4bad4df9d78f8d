// internal/oxtest/lexer.go
package oxtest

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenType classifies one lexed token of an OXTest line.
type tokenType int

const (
	tokenIdent tokenType = iota // bare word (the command kind)
	tokenPair                   // key=value, value possibly quoted
	tokenPipe                   // fallback separator
)

type token struct {
	typ tokenType
	key string // pair key, or the ident text
	val string // pair value, unquoted
	pos int    // rune offset in the line, for error messages
}

// lexLine splits a single OXTest line into tokens. Values may be quoted with
// double or single quotes and support backslash escapes; unquoted values run
// until whitespace or a pipe.
func lexLine(line string) ([]token, error) {
	runes := []rune(line)
	var tokens []token
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '|':
			tokens = append(tokens, token{typ: tokenPipe, pos: i})
			i++
		default:
			start := i
			key := make([]rune, 0, 16)
			for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '=' && runes[i] != '|' {
				key = append(key, runes[i])
				i++
			}
			if len(key) == 0 {
				return nil, &ParseError{Line: line, Pos: i, Reason: fmt.Sprintf("unexpected character %q", r)}
			}

			if i < len(runes) && runes[i] == '=' {
				i++ // consume '='
				val, next, err := lexValue(line, runes, i)
				if err != nil {
					return nil, err
				}
				i = next
				tokens = append(tokens, token{typ: tokenPair, key: string(key), val: val, pos: start})
			} else {
				tokens = append(tokens, token{typ: tokenIdent, key: string(key), pos: start})
			}
		}
	}
	return tokens, nil
}

// lexValue reads a (possibly quoted) value starting at offset i and returns
// the value plus the offset after it.
func lexValue(line string, runes []rune, i int) (string, int, error) {
	if i >= len(runes) {
		return "", i, nil
	}

	quote := runes[i]
	if quote == '"' || quote == '\'' {
		i++
		var sb strings.Builder
		for i < len(runes) {
			r := runes[i]
			if r == '\\' && i+1 < len(runes) {
				sb.WriteRune(runes[i+1])
				i += 2
				continue
			}
			if r == quote {
				return sb.String(), i + 1, nil
			}
			sb.WriteRune(r)
			i++
		}
		return "", i, &ParseError{Line: line, Pos: i, Reason: "unterminated quoted value"}
	}

	var sb strings.Builder
	for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '|' {
		sb.WriteRune(runes[i])
		i++
	}
	return sb.String(), i, nil
}
