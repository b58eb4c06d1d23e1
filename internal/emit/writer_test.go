package emit

import (
	"bytes"
	"strings"
	"testing"

	"veld/internal/design"
	"veld/internal/project"
)

type testStreams struct {
	w    *Writer
	code *bytes.Buffer
	hdr  *bytes.Buffer
}

func newTestWriter(t *testing.T, prj *project.Settings) *testStreams {
	t.Helper()
	if prj == nil {
		prj = project.Default("test")
	}
	w := NewWriter(design.NewTree(), prj)
	ts := &testStreams{w: w, code: &bytes.Buffer{}, hdr: &bytes.Buffer{}}
	w.code = newSink(ts.code)
	w.header = newSink(ts.hdr)
	return ts
}

func (ts *testStreams) codeString(t *testing.T) string {
	t.Helper()
	if err := ts.w.code.bw.Flush(); err != nil {
		t.Fatalf("flush code sink: %v", err)
	}
	return ts.code.String()
}

func (ts *testStreams) hdrString(t *testing.T) string {
	t.Helper()
	if err := ts.w.header.bw.Flush(); err != nil {
		t.Fatalf("flush header sink: %v", err)
	}
	return ts.hdr.String()
}

func TestWriteCOnceSuppressesDuplicates(t *testing.T) {
	ts := newTestWriter(t, nil)
	if !ts.w.WriteCOnce("#include <stdio.h>") {
		t.Fatalf("first WriteCOnce must report a new line")
	}
	if ts.w.WriteCOnce("#include <stdio.h>") {
		t.Fatalf("second WriteCOnce with the same line must be a no-op")
	}
	if got := ts.codeString(t); strings.Count(got, "#include <stdio.h>") != 1 {
		t.Fatalf("line emitted more than once:\n%s", got)
	}
}

func TestWriteCOnceDefersToHeader(t *testing.T) {
	ts := newTestWriter(t, nil)
	if !ts.w.WriteHOnce("#include <FL/Fl.H>") {
		t.Fatalf("header line must be new")
	}
	if ts.w.WriteCOnce("#include <FL/Fl.H>") {
		t.Fatalf("a line already in the header must never be emitted to source")
	}
	if got := ts.codeString(t); got != "" {
		t.Fatalf("source stream must stay empty, got %q", got)
	}
}

func TestContainsCodePointer(t *testing.T) {
	ts := newTestWriter(t, nil)
	n := &design.Node{}
	if ts.w.ContainsCodePointer(n) {
		t.Fatalf("first insert must report no prior membership")
	}
	if !ts.w.ContainsCodePointer(n) {
		t.Fatalf("second lookup must report prior membership")
	}
}

func TestIndentClamps(t *testing.T) {
	if got := indentFor(0); got != "" {
		t.Fatalf("indentFor(0) = %q", got)
	}
	if got := indentFor(3); got != strings.Repeat(" ", 6) {
		t.Fatalf("indentFor(3) = %q", got)
	}
	if got := indentFor(40); got != strings.Repeat(" ", 32) {
		t.Fatalf("indentFor(40) must clamp to 32 spaces, got %d", len(got))
	}
	if got := indentFor(-2); got != "" {
		t.Fatalf("negative levels must clamp to empty, got %q", got)
	}
}

func TestIndentPlusDoesNotStick(t *testing.T) {
	ts := newTestWriter(t, nil)
	ts.w.IndentMore()
	before := ts.w.Indent()
	_ = ts.w.IndentPlus(3)
	if ts.w.Indent() != before {
		t.Fatalf("IndentPlus must not change the stored indentation")
	}
	ts.w.IndentLess()
	if ts.w.Indent() != "" {
		t.Fatalf("indent level must return to zero after matched more/less")
	}
}

func TestUniqueIDStableAndUnique(t *testing.T) {
	ts := newTestWriter(t, nil)
	a := &design.Node{}
	b := &design.Node{}
	idA := ts.w.UniqueID(a, "cb", "button", "")
	if again := ts.w.UniqueID(a, "cb", "button", ""); again != idA {
		t.Fatalf("same owner must get the same id: %q vs %q", idA, again)
	}
	idB := ts.w.UniqueID(b, "cb", "button", "")
	if idB == idA {
		t.Fatalf("distinct owners must get distinct ids")
	}
	if idB != "cb_button1" {
		t.Fatalf("conflict must resolve with a hex suffix, got %q", idB)
	}
	c := &design.Node{}
	if idC := ts.w.UniqueID(c, "cb", "button", ""); idC != "cb_button2" {
		t.Fatalf("suffix must keep ascending, got %q", idC)
	}
}

func TestUniqueIDFallsBackToLabel(t *testing.T) {
	ts := newTestWriter(t, nil)
	n := &design.Node{}
	if id := ts.w.UniqueID(n, "cb", "", "&Save File"); id != "cb_Save" {
		t.Fatalf("label fallback must skip non-identifier chars and stop at the run end, got %q", id)
	}
}

func TestVarUsedProbe(t *testing.T) {
	ts := newTestWriter(t, nil)
	ts.w.SetVarUsedTest(true)
	ts.w.ResetVarUsed()
	ts.w.WriteH("never written\n")
	if ts.w.VarUsed() {
		t.Fatalf("header writes must not mark the variable used")
	}
	ts.w.WriteC("o->tooltip();\n")
	if !ts.w.VarUsed() {
		t.Fatalf("a suppressed source write must mark the variable used")
	}
	ts.w.SetVarUsedTest(false)
	if got := ts.codeString(t); got != "" {
		t.Fatalf("probe mode must not write anything, got %q", got)
	}
	if got := ts.hdrString(t); got != "" {
		t.Fatalf("probe mode must not write headers either, got %q", got)
	}
}

func TestWritePublicInsideClass(t *testing.T) {
	ts := newTestWriter(t, nil)
	cls := &design.Node{Kind: design.KindClass, Name: "Panel"}
	cls.SetWritePublicState(-1)
	ts.w.SetCurrentClass(cls)
	ts.w.WritePublic(design.Public)
	ts.w.WritePublic(design.Public)
	ts.w.WritePublic(design.Private)
	ts.w.SetCurrentClass(nil)
	ts.w.WritePublic(design.Protected) // outside any class: no-op
	want := "public:\nprivate:\n"
	if got := ts.hdrString(t); got != want {
		t.Fatalf("WritePublic output = %q, want %q", got, want)
	}
}

func TestWriteCCAddsSemicolon(t *testing.T) {
	ts := newTestWriter(t, nil)
	ts.w.WriteCC("  ", "x = 1", "// set")
	ts.w.WriteCC("", "y();", "")
	ts.w.WriteCC("", "}", "")
	want := "  x = 1; // set\ny();\n}\n"
	if got := ts.codeString(t); got != want {
		t.Fatalf("WriteCC output = %q, want %q", got, want)
	}
}

func TestWriteCIndented(t *testing.T) {
	ts := newTestWriter(t, nil)
	ts.w.IndentMore()
	ts.w.WriteCIndented("a();\n\n#define X 1\nb();", 1, ';')
	want := "    a();\n\n#define X 1\n    b();;"
	if got := ts.codeString(t); got != want {
		t.Fatalf("WriteCIndented output = %q, want %q", got, want)
	}
	if ts.w.Indent() != "  " {
		t.Fatalf("extra indent must not outlive the call")
	}
}

func TestWriteCIndentedTrailingNewline(t *testing.T) {
	ts := newTestWriter(t, nil)
	ts.w.WriteCIndented("a();\n", 0, '\n')
	if got := ts.codeString(t); got != "a();\n" {
		t.Fatalf("text with terminating newline must not grow a trailing char, got %q", got)
	}
}

func TestTagFormatAndReset(t *testing.T) {
	prj := project.Default("test")
	prj.WriteMergebackData = true
	ts := newTestWriter(t, prj)
	ts.w.crc.sum = 0xDEADBEEF
	ts.w.Tag(design.TagCode, 0x00ab)
	if got := ts.codeString(t); got != "//~fl~1~00ab~deadbeef~~\n" {
		t.Fatalf("tag line = %q", got)
	}
	if ts.w.crc.Sum32() != 0 || !ts.w.crc.lineStart {
		t.Fatalf("Tag must reset the CRC accumulator and the line-start flag")
	}
}

func TestTagDisabled(t *testing.T) {
	ts := newTestWriter(t, nil)
	ts.w.Tag(design.TagCode, 1)
	if got := ts.codeString(t); got != "" {
		t.Fatalf("tagging disabled must emit nothing, got %q", got)
	}
}
