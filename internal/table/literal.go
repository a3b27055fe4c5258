package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformedList is returned by ParseList for input that is not a list of
// quoted strings.
var ErrMalformedList = errors.New("malformed list literal")

// ParseList parses a serialized list of quoted strings, for example
// ['price', "it's", 'care']. Square brackets or parentheses may enclose the
// items, both quote styles are accepted and a trailing comma is allowed.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return nil, ErrMalformedList
	}
	var closer byte
	switch s[0] {
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return nil, ErrMalformedList
	}
	if s[len(s)-1] != closer {
		return nil, ErrMalformedList
	}
	body := s[1 : len(s)-1]

	items := []string{}
	pos := 0
	expectItem := true
	for {
		pos = skipSpace(body, pos)
		if pos >= len(body) {
			break
		}
		if !expectItem {
			if body[pos] != ',' {
				return nil, fmt.Errorf("%w: expected ',' at offset %d", ErrMalformedList, pos+1)
			}
			pos++
			expectItem = true
			continue
		}
		if body[pos] == ',' {
			return nil, fmt.Errorf("%w: empty item at offset %d", ErrMalformedList, pos+1)
		}
		item, next, err := readQuoted(body, pos)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		pos = next
		expectItem = false
	}
	return items, nil
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n' || s[pos] == '\r') {
		pos++
	}
	return pos
}

// readQuoted reads one quoted string starting at s[pos] and returns the
// decoded value and the offset just past the closing quote.
func readQuoted(s string, pos int) (string, int, error) {
	quote := s[pos]
	if quote != '\'' && quote != '"' {
		return "", 0, fmt.Errorf("%w: unquoted item at offset %d", ErrMalformedList, pos+1)
	}
	var b strings.Builder
	i := pos + 1
	for i < len(s) {
		c := s[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\':
			if i+1 >= len(s) {
				return "", 0, ErrMalformedList
			}
			n, err := writeEscape(&b, s, i+1)
			if err != nil {
				return "", 0, err
			}
			i = n
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			b.WriteString(s[i : i+size])
			i += size
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string", ErrMalformedList)
}

func writeEscape(b *strings.Builder, s string, i int) (int, error) {
	switch c := s[i]; c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'x':
		return writeCodePoint(b, s, i+1, 2)
	case 'u':
		return writeCodePoint(b, s, i+1, 4)
	case 'U':
		return writeCodePoint(b, s, i+1, 8)
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return i + 1, nil
}

func writeCodePoint(b *strings.Builder, s string, start, digits int) (int, error) {
	if start+digits > len(s) {
		return 0, fmt.Errorf("%w: short escape", ErrMalformedList)
	}
	v, err := strconv.ParseUint(s[start:start+digits], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, fmt.Errorf("%w: bad escape", ErrMalformedList)
	}
	b.WriteRune(rune(v))
	return start + digits, nil
}
