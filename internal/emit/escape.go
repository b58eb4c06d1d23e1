package emit

import (
	"fmt"
	"strings"
)

// sourceViewCutoff is the payload size beyond which source-view mode shows
// a placeholder instead of the escaped text.
const sourceViewCutoff = 300

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// WriteCString writes s as a double-quoted C string literal to the source
// stream. Control characters, quotes and backslashes become two-character
// escapes; a `?` following another `?` is written `\?` so no trigraph can
// form; other non-printable bytes become octal escapes with exactly as many
// digits as needed, splitting the literal when the next byte could be
// folded into the escape. With the UTF-8 option, high bytes pass verbatim
// and soft wraps land only before leader bytes. A nil payload emits an
// #error directive and a placeholder literal.
func (w *Writer) WriteCString(s []byte) {
	if w.varusedTest {
		w.varused = true
		return
	}
	if w.sourceView && (s == nil || len(s) > sourceViewCutoff) {
		if s != nil {
			w.crcWrite(fmt.Sprintf("\" ... %d bytes of text... \"", len(s)))
		} else {
			w.crcWrite("\" ... text... \"")
		}
		return
	}
	if s == nil {
		w.crcWrite("\n#error  string not found\n")
		w.crcWrite("\" ... undefined size text... \"")
		return
	}

	var out strings.Builder
	lineLen := 1
	out.WriteByte('"')
	utf8InSrc := w.prj.UTF8InSrc
	for i := 0; i < len(s); i++ {
		c := s[i]
		var quoted byte
		switch c {
		case '\b':
			quoted = 'b'
		case '\t':
			quoted = 't'
		case '\n':
			quoted = 'n'
		case '\f':
			quoted = 'f'
		case '\r':
			quoted = 'r'
		case '"', '\'', '\\':
			quoted = c
		case '?':
			if i > 0 && s[i-1] == '?' {
				quoted = '?'
			}
		}
		if quoted != 0 {
			if lineLen >= 77 {
				out.WriteString("\\\n")
				lineLen = 0
			}
			out.WriteByte('\\')
			out.WriteByte(quoted)
			lineLen += 2
			continue
		}
		if c >= ' ' && c < 127 {
			if lineLen >= 78 {
				out.WriteString("\\\n")
				lineLen = 0
			}
			out.WriteByte(c)
			lineLen++
			continue
		}
		if utf8InSrc && c&0x80 != 0 {
			if c&0x40 != 0 {
				// first byte of a UTF-8 sequence; a break is fine here but
				// never in front of a continuation byte
				if lineLen >= 78 {
					out.WriteString("\\\n")
					lineLen = 0
				}
			}
			out.WriteByte(c)
			lineLen++
			continue
		}
		// octal escape, shortest form
		switch {
		case c < 8:
			if lineLen >= 76 {
				out.WriteString("\\\n")
				lineLen = 0
			}
			fmt.Fprintf(&out, "\\%o", c)
			lineLen += 2
		case c < 64:
			if lineLen >= 75 {
				out.WriteString("\\\n")
				lineLen = 0
			}
			fmt.Fprintf(&out, "\\%o", c)
			lineLen += 3
		default:
			if lineLen >= 74 {
				out.WriteString("\\\n")
				lineLen = 0
			}
			fmt.Fprintf(&out, "\\%o", c)
			lineLen += 4
		}
		// a following hex digit would be consumed as part of the escape;
		// terminate the literal and start a new one
		if i+1 < len(s) && isHexDigit(s[i+1]) {
			out.WriteByte('"')
			lineLen++
			if lineLen >= 79 {
				out.WriteString("\n")
				lineLen = 0
			}
			out.WriteByte('"')
			lineLen++
		}
	}
	out.WriteByte('"')
	w.crcWrite(out.String())
}

// WriteCData writes s as a brace-wrapped array of decimal bytes, wrapping
// lines near the same soft limit as WriteCString. No terminating null is
// added.
func (w *Writer) WriteCData(s []byte) {
	if w.varusedTest {
		w.varused = true
		return
	}
	if w.sourceView {
		if s != nil {
			w.crcWrite(fmt.Sprintf("{ /* ... %d bytes of binary data... */ }", len(s)))
		} else {
			w.crcWrite("{ /* ... binary data... */ }")
		}
		return
	}
	if s == nil {
		w.crcWrite("\n#error  data not found\n")
		w.crcWrite("{ /* ... undefined size binary data... */ }")
		return
	}
	var out strings.Builder
	lineLen := 1
	out.WriteByte('{')
	for i, c := range s {
		switch {
		case c > 99:
			lineLen += 4
		case c > 9:
			lineLen += 3
		default:
			lineLen += 2
		}
		if lineLen >= 77 {
			out.WriteString("\n")
			lineLen = 0
		}
		fmt.Fprintf(&out, "%d", c)
		if i+1 < len(s) {
			out.WriteByte(',')
		}
	}
	out.WriteByte('}')
	w.crcWrite(out.String())
}
