package mergeback

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"veld/internal/design"
	"veld/internal/emit"
	"veld/internal/project"
)

type fixture struct {
	tree   *design.Tree
	prj    *project.Settings
	path   string
	button *design.Node
	code   *design.Node
}

// emitFixture emits a small tagged design and hands back the file plus the
// nodes whose blocks are editable.
func emitFixture(t *testing.T) *fixture {
	t.Helper()
	tree := design.NewTree()
	tree.Append(&design.Node{Kind: design.KindFunction, Name: "make_window()", ReturnType: "Fl_Window*"})
	tree.Append(&design.Node{Kind: design.KindWidget, Level: 1, Base: "Fl_Window", Name: "main_window", CtorArgs: "0, 0, 340, 180", Label: "Main"})
	button := tree.Append(&design.Node{Kind: design.KindWidget, Level: 2, Base: "Fl_Button", CtorArgs: "20, 20, 100, 30", Label: "Press", Callback: "exit(0);"})
	code := tree.Append(&design.Node{Kind: design.KindCode, Level: 1, Code: "main_window->show();"})
	if err := tree.EnsureUIDs(); err != nil {
		t.Fatalf("EnsureUIDs: %v", err)
	}

	prj := project.Default("panel")
	prj.WriteMergebackData = true

	dir := t.TempDir()
	codePath := filepath.Join(dir, "panel.cxx")
	headerPath := filepath.Join(dir, "panel.h")
	w := emit.NewWriter(tree, prj)
	if err := w.WriteFiles(codePath, headerPath, false); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	return &fixture{tree: tree, prj: prj, path: codePath, button: button, code: code}
}

func (f *fixture) rewrite(t *testing.T, old, new string) {
	t.Helper()
	data, err := os.ReadFile(f.path)
	if err != nil {
		t.Fatalf("read emitted file: %v", err)
	}
	if !strings.Contains(string(data), old) {
		t.Fatalf("emitted file does not contain %q:\n%s", old, data)
	}
	out := strings.Replace(string(data), old, new, 1)
	if err := os.WriteFile(f.path, []byte(out), 0o644); err != nil {
		t.Fatalf("rewrite emitted file: %v", err)
	}
}

func TestCheckCleanFile(t *testing.T) {
	f := emitFixture(t)
	ret, err := MergeBack(f.tree, f.prj, f.path, Check)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != 0 {
		t.Fatalf("Check on an untouched file = %d, want 0", ret)
	}
}

func TestCheckAbsorbsLeadingWhitespace(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "  exit(0);\n", "   exit(0);\r\n")
	ret, err := MergeBack(f.tree, f.prj, f.path, Check)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != 0 {
		t.Fatalf("leading whitespace and CR must be absorbed by normalization, got %d", ret)
	}
}

func TestCheckClassifiesCallbackEdit(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "  exit(0);\n", "  exit(1);\n")
	ret, err := MergeBack(f.tree, f.prj, f.path, Check)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != BitCallback {
		t.Fatalf("Check = %d, want callback bit %d", ret, BitCallback)
	}
}

func TestGoMergesCallback(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "  exit(0);\n", "  exit(1); // bye\n")
	ret, err := MergeBack(f.tree, f.prj, f.path, Go)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != 1 {
		t.Fatalf("Go = %d, want 1", ret)
	}
	if f.button.Callback != "exit(1); // bye\n" {
		t.Fatalf("callback not merged, got %q", f.button.Callback)
	}
}

func TestGoMergesCodeBlock(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "  main_window->show();\n", "  main_window->show();\n  run_loop();\n")
	ret, err := MergeBack(f.tree, f.prj, f.path, Go)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != 1 {
		t.Fatalf("Go = %d, want 1", ret)
	}
	if f.code.Code != "main_window->show();\nrun_loop();\n" {
		t.Fatalf("code block not merged, got %q", f.code.Code)
	}
}

func TestGoRoundTrip(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "  exit(0);\n", "  if (confirm())\n    exit(0);\n")
	if ret, err := MergeBack(f.tree, f.prj, f.path, Go); err != nil || ret != 1 {
		t.Fatalf("Go = %d, %v", ret, err)
	}
	// re-emitting the merged tree and re-checking must come back clean
	dir := t.TempDir()
	codePath := filepath.Join(dir, "panel.cxx")
	w := emit.NewWriter(f.tree, f.prj)
	if err := w.WriteFiles(codePath, filepath.Join(dir, "panel.h"), false); err != nil {
		t.Fatalf("re-emit: %v", err)
	}
	ret, err := MergeBack(f.tree, f.prj, codePath, Check)
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if ret != 0 {
		t.Fatalf("merged tree must re-emit cleanly, Check = %d", ret)
	}
}

func TestStructuralEditDetectedAndNeverMerged(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "new Fl_Button(20, 20, 100, 30", "new Fl_Button(20, 20, 120, 30")
	ret, err := MergeBack(f.tree, f.prj, f.path, Check)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret&BitStructure == 0 {
		t.Fatalf("Check = %d, structural bit missing", ret)
	}
	before := f.button.CtorArgs
	if ret, err := MergeBack(f.tree, f.prj, f.path, Go); err != nil || ret != 0 {
		t.Fatalf("Go over a structural-only edit = %d, %v, want 0", ret, err)
	}
	if f.button.CtorArgs != before {
		t.Fatalf("structural edits must never be merged back")
	}
}

func TestGoSafeRefusesStructuralConflict(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "new Fl_Button(20, 20, 100, 30", "new Fl_Button(20, 20, 120, 30")
	f.rewrite(t, "  exit(0);\n", "  exit(1);\n")
	ret, err := MergeBack(f.tree, f.prj, f.path, GoSafe)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != -1 {
		t.Fatalf("GoSafe with a structural conflict = %d, want -1", ret)
	}
	if f.button.Callback != "exit(0);" {
		t.Fatalf("GoSafe must not apply anything on conflict")
	}
}

func TestGoSafeMergesWhenClean(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "  exit(0);\n", "  exit(2);\n")
	ret, err := MergeBack(f.tree, f.prj, f.path, GoSafe)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != 1 {
		t.Fatalf("GoSafe without conflicts = %d, want 1", ret)
	}
	if f.button.Callback != "exit(2);\n" {
		t.Fatalf("callback not merged, got %q", f.button.Callback)
	}
}

func TestMalformedTagFails(t *testing.T) {
	f := emitFixture(t)
	data, err := os.ReadFile(f.path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	i := strings.Index(string(data), "//~fl~")
	if i < 0 {
		t.Fatalf("no tag in emitted file")
	}
	broken := string(data[:i]) + "//~fl~1~zzzz~00000000~~\n" + string(data[i:])
	if err := os.WriteFile(f.path, []byte(broken), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, task := range []Task{Check, Go, GoSafe} {
		ret, err := MergeBack(f.tree, f.prj, f.path, task)
		if err != nil {
			t.Fatalf("MergeBack: %v", err)
		}
		if ret != -1 {
			t.Fatalf("task %d on a malformed tag = %d, want -1", task, ret)
		}
	}
}

func TestUnknownUIDCounted(t *testing.T) {
	f := emitFixture(t)
	// point the callback tag at a uid the tree does not contain, and change
	// the block so the CRC check fires
	data, err := os.ReadFile(f.path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tagPrefix := "//~fl~3~"
	i := strings.Index(string(data), tagPrefix)
	if i < 0 {
		t.Fatalf("no callback tag in emitted file")
	}
	out := string(data[:i+len(tagPrefix)]) + "fffe" + string(data[i+len(tagPrefix)+4:])
	out = strings.Replace(out, "  exit(0);\n", "  exit(9);\n", 1)
	if err := os.WriteFile(f.path, []byte(out), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ret, err := MergeBack(f.tree, f.prj, f.path, Check)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != BitCallback|BitUIDNotFound {
		t.Fatalf("Check = %d, want %d", ret, BitCallback|BitUIDNotFound)
	}
	if ret, err := MergeBack(f.tree, f.prj, f.path, Go); err != nil || ret != 0 {
		t.Fatalf("Go with an unknown uid must skip the edit, got %d, %v", ret, err)
	}
}

func TestMergebackDisabled(t *testing.T) {
	f := emitFixture(t)
	f.prj.WriteMergebackData = false
	f.rewrite(t, "  exit(0);\n", "  exit(1);\n")
	ret, err := MergeBack(f.tree, f.prj, f.path, Go)
	if err != nil {
		t.Fatalf("MergeBack: %v", err)
	}
	if ret != 0 || f.button.Callback != "exit(0);" {
		t.Fatalf("merge-back must be inert when the project disables it")
	}
}

func TestInteractivePromptFlow(t *testing.T) {
	f := emitFixture(t)
	f.rewrite(t, "  exit(0);\n", "  exit(3);\n")

	var seen Counters
	declined := func(c Counters) bool { seen = c; return false }
	_, ret, err := Interactive(f.tree, f.prj, f.path, declined)
	if err != nil {
		t.Fatalf("Interactive: %v", err)
	}
	if ret != 0 || f.button.Callback != "exit(0);" {
		t.Fatalf("declining the prompt must not merge, ret=%d", ret)
	}
	if seen.ChangedCallback != 1 {
		t.Fatalf("prompt must see the classification, got %+v", seen)
	}

	accepted := func(Counters) bool { return true }
	_, ret, err = Interactive(f.tree, f.prj, f.path, accepted)
	if err != nil {
		t.Fatalf("Interactive: %v", err)
	}
	if ret != 1 || f.button.Callback != "exit(3);\n" {
		t.Fatalf("accepting the prompt must merge, ret=%d callback=%q", ret, f.button.Callback)
	}
}

func TestUnindent(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  a;\n  b;\n", "a;\nb;\n"},
		{"    deep;\n", "  deep;\n"},
		{"top;\n", "top;\n"},
		{"  a;\r\n", "a;\n"},
	}
	for _, c := range cases {
		if got := Unindent([]byte(c.in)); got != c.want {
			t.Fatalf("Unindent(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
