// Package capture decodes asciinema-style recordings and reconstructs the
// shell commands a user executed from the interleaved input/output stream.
package capture

import "strings"

const (
	esc = 0x1b
	bel = 0x07
	del = 0x7f
)

// ExtractTitle returns the payload of the first OSC set-window-title sequence
// (ESC ] 2 ; payload BEL, or terminated by ESC \) in s. Shell integrations
// populate the title with the just-executed command, which the title
// reconstruction strategy relies on.
func ExtractTitle(s string) (string, bool) {
	start := strings.Index(s, "\x1b]2;")
	if start < 0 {
		return "", false
	}
	rest := s[start+4:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case bel:
			return rest[:i], true
		case esc:
			if i+1 < len(rest) && rest[i+1] == '\\' {
				return rest[:i], true
			}
		}
	}
	// Unterminated sequence: not a usable title.
	return "", false
}

// StripEscapes removes CSI, OSC and charset escape sequences from s.
// Malformed or truncated sequences never panic: an ESC that does not open a
// recognized sequence is dropped and scanning continues.
func StripEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != esc {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 >= len(s) {
			break
		}
		switch s[i+1] {
		case '[':
			i = skipCSI(s, i+2)
		case ']':
			i = skipOSC(s, i+2)
		case '(', ')':
			i += 2
			if i < len(s) {
				i++
			}
		default:
			// Lone ESC: drop it, keep the following byte as data.
			i++
		}
	}
	return b.String()
}

// skipCSI advances past parameter, intermediate and final bytes of a CSI
// sequence starting at i (just after "ESC [").
func skipCSI(s string, i int) int {
	for i < len(s) && s[i] >= 0x30 && s[i] <= 0x3f {
		i++
	}
	for i < len(s) && s[i] >= 0x20 && s[i] <= 0x2f {
		i++
	}
	if i < len(s) && s[i] >= 0x40 && s[i] <= 0x7e {
		i++
	}
	return i
}

// skipOSC advances past an OSC body terminated by BEL or ESC \.
func skipOSC(s string, i int) int {
	for i < len(s) {
		if s[i] == bel {
			return i + 1
		}
		if s[i] == esc && i+1 < len(s) && s[i+1] == '\\' {
			return i + 2
		}
		i++
	}
	return i
}

// EditLine builds the line a user would see after terminal editing: escape
// sequences are stripped, backspace and DEL pop the previous character, and
// remaining control characters below 0x20 (except tab) are discarded.
func EditLine(s string) string {
	s = StripEscapes(s)
	buf := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r == '\b' || r == del:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		case r < 0x20 && r != '\t':
			// drop
		default:
			buf = append(buf, r)
		}
	}
	return string(buf)
}
