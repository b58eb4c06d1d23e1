package emit

import (
	"fmt"
	"strconv"

	"veld/internal/design"
	"veld/internal/project"
)

// Writer owns the two output streams of one emit pass. It interposes on
// every byte written to the source stream to keep the running block CRC and
// the line-start flag current, de-duplicates include/declaration lines, and
// hands out stable unique identifiers. One Writer per pass; it holds the
// tree and settings handles instead of reaching for globals.
type Writer struct {
	tree *design.Tree
	prj  *project.Settings

	code   *sink
	header *sink

	indentation int
	sourceView  bool

	// varusedTest suppresses all source-stream writes; varused remembers
	// whether anything would have been written.
	varusedTest bool
	varused     bool

	ids          map[string]any
	textInHeader map[string]struct{}
	textInCode   map[string]struct{}
	ptrInCode    map[any]struct{}

	currentClass       *design.Node
	currentWidgetClass *design.Node

	crc NormCRC
}

// NewWriter creates a writer for one emit pass over tree with settings prj.
func NewWriter(tree *design.Tree, prj *project.Settings) *Writer {
	w := &Writer{tree: tree, prj: prj}
	w.reset()
	return w
}

// reset drops all per-pass state.
func (w *Writer) reset() {
	w.indentation = 0
	w.varusedTest = false
	w.varused = false
	w.ids = make(map[string]any)
	w.textInHeader = make(map[string]struct{})
	w.textInCode = make(map[string]struct{})
	w.ptrInCode = make(map[any]struct{})
	w.currentClass = nil
	w.currentWidgetClass = nil
	w.crc = NewNormCRC()
}

// Project returns the settings handle of this pass.
func (w *Writer) Project() *project.Settings { return w.prj }

// SourceView reports whether large payloads are abbreviated and offsets
// recorded.
func (w *Writer) SourceView() bool { return w.sourceView }

func (w *Writer) CurrentClass() *design.Node       { return w.currentClass }
func (w *Writer) CurrentWidgetClass() *design.Node { return w.currentWidgetClass }

func (w *Writer) SetCurrentClass(n *design.Node)       { w.currentClass = n }
func (w *Writer) SetCurrentWidgetClass(n *design.Node) { w.currentWidgetClass = n }

func (w *Writer) SetVarUsedTest(on bool) { w.varusedTest = on }
func (w *Writer) ResetVarUsed()          { w.varused = false }
func (w *Writer) VarUsed() bool          { return w.varused }

// crcWrite appends raw bytes to the source stream. This is the single
// choke point: the CRC normalizer sees every byte exactly once, and only
// while tagging is enabled.
func (w *Writer) crcWrite(s string) {
	if w.prj.WriteMergebackData {
		w.crc.AddString(s)
	}
	w.code.WriteString(s)
}

// WriteC writes formatted text to the source stream.
func (w *Writer) WriteC(format string, args ...any) {
	if w.varusedTest {
		w.varused = true
		return
	}
	if len(args) == 0 {
		w.crcWrite(format)
		return
	}
	w.crcWrite(fmt.Sprintf(format, args...))
}

// WriteH writes formatted text to the header stream.
func (w *Writer) WriteH(format string, args ...any) {
	if w.varusedTest {
		return
	}
	if len(args) == 0 {
		w.header.WriteString(format)
		return
	}
	w.header.WriteString(fmt.Sprintf(format, args...))
}

// WriteHOnce writes a line to the header unless the identical line was
// already written there. Returns whether the line was new.
func (w *Writer) WriteHOnce(format string, args ...any) bool {
	line := fmt.Sprintf(format, args...)
	if _, seen := w.textInHeader[line]; seen {
		return false
	}
	w.textInHeader[line] = struct{}{}
	w.header.WriteString(line)
	w.header.WriteString("\n")
	return true
}

// WriteCOnce writes a line to the source unless the identical line was
// already written to either stream. The header set is consulted first: a
// line that made it into the header is never repeated in the source file.
func (w *Writer) WriteCOnce(format string, args ...any) bool {
	if w.varusedTest {
		w.varused = true
		return false
	}
	line := fmt.Sprintf(format, args...)
	if _, seen := w.textInHeader[line]; seen {
		return false
	}
	if _, seen := w.textInCode[line]; seen {
		return false
	}
	w.textInCode[line] = struct{}{}
	w.crcWrite(line)
	w.crcWrite("\n")
	return true
}

// ContainsCodePointer reports whether ptr was already recorded in this
// pass, recording it if not. Nodes use it to avoid emitting the same
// definition twice.
func (w *Writer) ContainsCodePointer(ptr any) bool {
	if _, seen := w.ptrInCode[ptr]; seen {
		return true
	}
	w.ptrInCode[ptr] = struct{}{}
	return false
}

// WritePublic emits one of private:/public:/protected: into the innermost
// class body, but only when the recorded state actually changes. Outside
// any class it does nothing.
func (w *Writer) WritePublic(state int) {
	if w.currentClass == nil && w.currentWidgetClass == nil {
		return
	}
	if w.currentClass != nil && w.currentClass.WritePublicState() == state {
		return
	}
	if w.currentWidgetClass != nil && w.currentWidgetClass.WritePublicState() == state {
		return
	}
	if w.currentClass != nil {
		w.currentClass.SetWritePublicState(state)
	}
	if w.currentWidgetClass != nil {
		w.currentWidgetClass.SetWritePublicState(state)
	}
	switch state {
	case design.Private:
		w.WriteH("private:\n")
	case design.Public:
		w.WriteH("public:\n")
	case design.Protected:
		w.WriteH("protected:\n")
	}
}

// maxIdentLen bounds composed identifiers, leaving room for a hex suffix.
const maxIdentLen = 120

// UniqueID returns a unique, human-readable identifier for owner, built
// from prefix and the first identifier run of name (or label as fallback).
// Asking again for the same owner returns the same string; a clash with a
// different owner grows an ascending hexadecimal suffix.
func (w *Writer) UniqueID(owner any, prefix, name, label string) string {
	buf := make([]byte, 0, maxIdentLen)
	buf = append(buf, prefix...)
	buf = append(buf, '_')
	src := name
	if src == "" {
		src = label
	}
	i := 0
	for i < len(src) && !design.IsIdentChar(src[i]) {
		i++
	}
	for i < len(src) && design.IsIdentChar(src[i]) && len(buf) < maxIdentLen {
		buf = append(buf, src[i])
		i++
	}
	base := string(buf)
	id := base
	which := uint64(0)
	for {
		prev, taken := w.ids[id]
		if !taken {
			w.ids[id] = owner
			return id
		}
		if prev == owner {
			return id
		}
		which++
		id = base + strconv.FormatUint(which, 16)
	}
}
