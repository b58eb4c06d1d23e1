package emit

import (
	"fmt"
	"strings"
)

// WriteCIndented writes one or more lines of code to the source stream,
// indenting each at the current depth raised by extraIndent for the
// duration of the call. Blank lines stay blank, preprocessor lines keep
// column zero, and trailing is appended after the last line when the text
// has no terminating newline.
func (w *Writer) WriteCIndented(text string, extraIndent int, trailing byte) {
	if text == "" {
		return
	}
	w.indentation += extraIndent
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			break // the terminating newline was written with the previous line
		}
		switch {
		case line == "":
			// blank line, no trailing spaces
		case line[0] == '#':
			w.WriteC("%s", line)
		default:
			w.WriteC("%s%s", w.Indent(), line)
		}
		if i < len(lines)-1 {
			w.WriteC("\n")
		} else if trailing != 0 {
			w.WriteC("%c", trailing)
		}
	}
	w.indentation -= extraIndent
}

// WriteCC writes one line of code to the source stream: indent, the code,
// a `;` unless the code already ends in `;` or `}`, an optional comment,
// and a newline.
func (w *Writer) WriteCC(indent, code, comment string) {
	w.WriteC("%s%s", indent, code)
	if needsSemicolon(code) {
		w.WriteC(";")
	}
	if comment != "" {
		w.WriteC(" %s", comment)
	}
	w.WriteC("\n")
}

// WriteHC is WriteCC for the header stream.
func (w *Writer) WriteHC(indent, code, comment string) {
	w.WriteH("%s%s", indent, code)
	if needsSemicolon(code) {
		w.WriteH(";")
	}
	if comment != "" {
		w.WriteH(" %s", comment)
	}
	w.WriteH("\n")
}

func needsSemicolon(code string) bool {
	if code == "" {
		return true
	}
	last := code[len(code)-1]
	return last != '}' && last != ';'
}

// Tag closes the current block: when merge-back data is enabled it emits a
// single tag line carrying the block kind, the node uid and the CRC of the
// bytes since the previous tag. The tag line itself never feeds the CRC of
// the following block.
func (w *Writer) Tag(kind int, uid uint16) {
	if w.varusedTest {
		return
	}
	if w.prj.WriteMergebackData {
		w.code.WriteString(fmt.Sprintf("//~fl~%d~%04x~%08x~~\n", kind, uid, w.crc.Sum32()))
	}
	w.crc.Reset()
}
