package parser

import "strings"

// contentStreamText pulls shown text out of a decoded page content stream.
// It understands literal strings and the text-showing and line-moving
// operators; hex strings, fonts and positioning values are ignored.
func contentStreamText(stream []byte) string {
	var out strings.Builder
	var pending []string

	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}
	flush := func() {
		for _, s := range pending {
			out.WriteString(s)
		}
		pending = pending[:0]
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '(':
			s, next := readLiteral(stream, i)
			pending = append(pending, s)
			i = next
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case isOperatorByte(c):
			start := i
			for i < len(stream) && isOperatorByte(stream[i]) {
				i++
			}
			switch string(stream[start:i]) {
			case "Tj", "TJ":
				flush()
			case "'", "\"":
				newline()
				flush()
			case "T*", "Td", "TD", "ET":
				newline()
				pending = pending[:0]
			default:
				pending = pending[:0]
			}
		default:
			i++
		}
	}
	return strings.TrimSpace(out.String())
}

// readLiteral decodes the balanced literal string starting at stream[start]
// == '(' and returns it with the index just past the closing parenthesis.
func readLiteral(stream []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 0
	i := start
	for i < len(stream) {
		c := stream[i]
		switch c {
		case '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		case '\\':
			i++
			if i >= len(stream) {
				return sb.String(), i
			}
			switch e := stream[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
				// dropped
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := 0
					for n := 0; n < 3 && i < len(stream) && stream[i] >= '0' && stream[i] <= '7'; n++ {
						val = val*8 + int(stream[i]-'0')
						i++
					}
					sb.WriteByte(byte(val))
					continue
				}
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(c)
		}
		i++
	}
	return sb.String(), i
}

func isOperatorByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '*' || c == '\'' || c == '"'
}
