package design

import "veld/internal/project"

// Merge-back tag kinds, as written into the tag line.
const (
	TagGeneric        = 0
	TagCode           = 1
	TagMenuCallback   = 2
	TagWidgetCallback = 3
	TagLast           = 3
)

// CodeWriter is the surface the emit hooks program against. The concrete
// implementation lives in internal/emit; keeping the contract here lets the
// tree stay ignorant of sinks, CRC state and once-sets.
type CodeWriter interface {
	Project() *project.Settings
	SourceView() bool

	// Source-sink output. Everything written here feeds the running block
	// CRC when merge-back tagging is enabled.
	WriteC(format string, args ...any)
	WriteCOnce(format string, args ...any) bool
	WriteCC(indent, code, comment string)
	WriteCString(s []byte)
	WriteCData(s []byte)
	WriteCIndented(text string, extraIndent int, trailing byte)

	// Header-sink output.
	WriteH(format string, args ...any)
	WriteHOnce(format string, args ...any) bool
	WriteHC(indent, code, comment string)
	WritePublic(state int)

	Indent() string
	IndentPlus(offset int) string
	IndentMore()
	IndentLess()

	UniqueID(owner any, prefix, name, label string) string
	ContainsCodePointer(ptr any) bool
	Tag(kind int, uid uint16)

	CurrentClass() *Node
	CurrentWidgetClass() *Node
	SetCurrentClass(n *Node)
	SetCurrentWidgetClass(n *Node)

	// Variable-use probe: while the test flag is on, writes to the source
	// sink are suppressed but remembered, so a hook can ask "would this emit
	// anything?" before committing to a variable declaration.
	SetVarUsedTest(on bool)
	ResetVarUsed()
	VarUsed() bool
}
