package logline

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Split breaks a raw trace line into its fields, decoding escapes.
// An empty line has no fields; a trailing comma yields a trailing empty field.
func Split(line string) []string {
	if line == "" {
		return nil
	}

	var fields []string
	pos := 0
	for {
		if pos < len(line) && line[pos] == '"' {
			if end := strings.IndexByte(line[pos+1:], '"'); end >= 0 {
				field := unescape(line[pos+1 : pos+1+end])
				next := pos + end + 2
				// Text between the closing quote and the comma stays part of the field.
				comma := strings.IndexByte(line[next:], ',')
				if comma < 0 {
					return append(fields, field+unescape(line[next:]))
				}
				fields = append(fields, field+unescape(line[next:next+comma]))
				pos = next + comma + 1
				continue
			}
		}

		comma := strings.IndexByte(line[pos:], ',')
		if comma < 0 {
			return append(fields, unescape(line[pos:]))
		}
		fields = append(fields, unescape(line[pos:pos+comma]))
		pos += comma + 1
	}
}

// Tokenize splits a line into its tag and the fields that follow it.
func Tokenize(line string) (string, []string) {
	fields := Split(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// unescape decodes \\, \xHH, \uHHHH and \u{H..H}. Anything else is kept verbatim.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}

		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
			i++
			continue
		case 'x':
			if i+4 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					b.WriteRune(rune(v))
					i += 3
					continue
				}
			}
		case 'u':
			if i+2 < len(s) && s[i+2] == '{' {
				end := strings.IndexByte(s[i+3:], '}')
				if end > 0 && end <= 6 {
					if v, err := strconv.ParseUint(s[i+3:i+3+end], 16, 32); err == nil && v <= unicode.MaxRune {
						b.WriteRune(rune(v))
						i += 3 + end
						continue
					}
				}
			} else if i+6 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+6], 16, 16); err == nil {
					r := rune(v)
					i += 5
					// Non-BMP characters are logged as two UTF-16 escapes.
					if utf16.IsSurrogate(r) && i+7 <= len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
						if lo, err := strconv.ParseUint(s[i+3:i+7], 16, 16); err == nil {
							if pair := utf16.DecodeRune(r, rune(lo)); pair != unicode.ReplacementChar {
								r = pair
								i += 6
							}
						}
					}
					b.WriteRune(r)
					continue
				}
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
