package design

// Kind discriminates the node types of a design tree.
type Kind uint8

const (
	// KindComment is a freestanding comment; the first and last tree nodes
	// are usually comments carrying the copyright header and footer.
	KindComment Kind = iota
	// KindFunction is a free function or a class method.
	KindFunction
	// KindCode is a verbatim block of user code inside a function.
	KindCode
	// KindDecl is a declaration, include or typedef.
	KindDecl
	// KindClass is a plain C++ class.
	KindClass
	// KindWidgetClass is a class derived from a widget group; its children
	// are constructed inside the generated constructor.
	KindWidgetClass
	// KindWidget is a single widget instantiation.
	KindWidget
	// KindMenuItem is an entry of a menu widget's item array.
	KindMenuItem
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindFunction:
		return "function"
	case KindCode:
		return "code"
	case KindDecl:
		return "decl"
	case KindClass:
		return "class"
	case KindWidgetClass:
		return "widgetclass"
	case KindWidget:
		return "widget"
	case KindMenuItem:
		return "menuitem"
	}
	return "unknown"
}

// Visibility states written inside class bodies.
const (
	Private   = 0
	Public    = 1
	Protected = 2
)

// OffsetRange is a [Start, End) byte range inside an emitted file.
type OffsetRange struct {
	Start int64
	End   int64
}

// Node is one entry of the design tree. Depth is encoded in Level; children
// follow their parent in the Next chain with a strictly greater level.
type Node struct {
	Kind  Kind
	Level int
	// UID identifies the node in merge-back tags. Stable within a session,
	// unique across the tree, 16 bit on the wire.
	UID uint16

	Name     string // identifier; for functions the full signature
	Label    string
	Tooltip  string
	Callback string
	Code     string // body text: code blocks, decls, comments, widget extras
	// ReturnType of function nodes; empty means void.
	ReturnType string
	// Base names the widget class of widget nodes and the superclass of
	// class nodes.
	Base     string
	CtorArgs string // widget constructor geometry, e.g. "25, 25, 105, 25"
	// Data holds inline image bytes for widgets that carry one.
	Data   []byte
	Public int

	// Comment placement.
	InSource bool
	InHeader bool

	// Visibility keyword last written inside this class body. -1 before the
	// first WritePublic call.
	writePublicState int

	next *Node
	prev *Node

	// Byte offsets recorded by the walker in source-view mode.
	CodePrologue   OffsetRange
	CodeEpilogue   OffsetRange
	CodeStatic     OffsetRange
	HeaderPrologue OffsetRange
	HeaderEpilogue OffsetRange
	HeaderStatic   OffsetRange
}

// WritePublicState returns the visibility keyword last written inside this
// class body, or -1 when none was written yet.
func (n *Node) WritePublicState() int { return n.writePublicState }

// SetWritePublicState records the visibility keyword just written.
func (n *Node) SetWritePublicState(state int) { n.writePublicState = state }

// Next returns the following node in flattened tree order.
func (n *Node) Next() *Node { return n.next }

// Prev returns the preceding node in flattened tree order.
func (n *Node) Prev() *Node { return n.prev }

// Is reports whether the node has the given kind.
func (n *Node) Is(k Kind) bool { return n != nil && n.Kind == k }

// IsWidget reports whether the node participates in widget layout.
func (n *Node) IsWidget() bool {
	return n != nil && (n.Kind == KindWidget || n.Kind == KindMenuItem || n.Kind == KindWidgetClass)
}

// IsClass reports whether the node opens a class scope in the header.
func (n *Node) IsClass() bool {
	return n != nil && (n.Kind == KindClass || n.Kind == KindWidgetClass)
}

// IsTrueWidget reports whether the node is backed by a live widget object,
// which is what merge-back needs to re-attach an edited callback.
func (n *Node) IsTrueWidget() bool {
	return n != nil && (n.Kind == KindWidget || n.Kind == KindMenuItem)
}

// SetCallback replaces the node's callback text (merge-back apply path).
func (n *Node) SetCallback(text string) { n.Callback = text }

// SetBody replaces the node's code text (merge-back apply path).
func (n *Node) SetBody(text string) { n.Code = text }

// HasChildren reports whether any following node is nested under this one.
func (n *Node) HasChildren() bool {
	return n.next != nil && n.next.Level > n.Level
}

// IsIdentChar reports whether c can appear in a C identifier. Deliberately
// locale-independent.
func IsIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
