package design

import (
	"strings"

	"veld/internal/project"
)

// EmitPrologue writes the part of the node that precedes its children.
func (n *Node) EmitPrologue(w CodeWriter) {
	switch n.Kind {
	case KindComment:
		n.emitComment(w)
	case KindFunction:
		n.emitFunctionOpen(w)
	case KindCode:
		w.Tag(TagGeneric, 0)
		w.WriteCIndented(n.Code, 0, '\n')
		w.Tag(TagCode, n.UID)
	case KindDecl:
		n.emitDecl(w)
	case KindClass:
		n.emitClassOpen(w)
	case KindWidgetClass:
		n.emitWidgetClassOpen(w)
	case KindWidget:
		n.emitWidgetOpen(w)
	case KindMenuItem:
		// menu items are emitted inside the parent's item array
	}
}

// EmitEpilogue writes the part of the node that follows its children.
func (n *Node) EmitEpilogue(w CodeWriter) {
	switch n.Kind {
	case KindFunction:
		w.IndentLess()
		w.WriteC("}\n")
		w.Tag(TagGeneric, n.UID)
	case KindClass:
		w.WriteH("};\n")
		w.SetCurrentClass(nil)
		w.Tag(TagGeneric, n.UID)
	case KindWidgetClass:
		w.IndentLess()
		w.WriteC("%send();\n", w.IndentPlus(1))
		w.WriteC("}\n")
		w.Tag(TagGeneric, n.UID)
	case KindWidget:
		n.emitWidgetClose(w)
	}
}

// EmitStatic writes file-scope data the node needs before any function
// bodies: callback shims and menu item arrays.
func (n *Node) EmitStatic(w CodeWriter) {
	switch n.Kind {
	case KindWidget:
		// named widgets outside a class live in a global variable
		if n.Name != "" && n.enclosingClass() == nil {
			base := n.widgetBase()
			w.WriteHOnce("extern %s *%s;", base, n.Name)
			w.WriteCOnce("%s *%s=(%s *)0;", base, n.Name, base)
		}
		n.emitImageData(w)
		n.emitCallbackStatic(w, TagWidgetCallback)
		if items := n.menuItems(); len(items) > 0 {
			for _, it := range items {
				it.emitCallbackStatic(w, TagMenuCallback)
			}
			n.emitMenuArray(w, items)
		}
	case KindMenuItem:
		n.emitCallbackStatic(w, TagMenuCallback)
	}
}

func (n *Node) emitComment(w CodeWriter) {
	text := n.Code
	if text == "" {
		text = n.Name
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if n.InSource {
			w.WriteC("// %s\n", line)
		}
		if n.InHeader {
			w.WriteH("// %s\n", line)
		}
	}
	if n.InSource {
		w.WriteC("\n")
	}
	if n.InHeader {
		w.WriteH("\n")
	}
}

func (n *Node) returnType() string {
	if n.ReturnType == "" {
		return "void"
	}
	return n.ReturnType
}

func (n *Node) emitFunctionOpen(w CodeWriter) {
	rt := n.returnType()
	c := w.CurrentWidgetClass()
	if c == nil {
		c = w.CurrentClass()
	}
	if c != nil {
		w.WritePublic(n.Public)
		// class members always sit one level deep in the header
		w.WriteHC("  ", rt+" "+n.Name, "")
		w.WriteC("%s %s::%s {\n", rt, c.Name, n.Name)
	} else {
		w.WriteHC("", rt+" "+n.Name, "")
		w.WriteC("%s %s {\n", rt, n.Name)
	}
	w.IndentMore()
}

func (n *Node) emitDecl(w CodeWriter) {
	text := strings.TrimSpace(n.Code)
	if text == "" {
		return
	}
	inClass := w.CurrentClass() != nil || w.CurrentWidgetClass() != nil
	once := strings.HasPrefix(text, "#") ||
		strings.HasPrefix(text, "extern ") ||
		strings.HasPrefix(text, "typedef ") ||
		strings.HasPrefix(text, "using ")
	if once && !inClass {
		if n.Public == Public {
			w.WriteHOnce("%s", text)
		} else {
			w.WriteCOnce("%s", text)
		}
		return
	}
	if inClass {
		w.WritePublic(n.Public)
		w.WriteHC("  ", text, "")
		return
	}
	if n.Public == Public {
		w.WriteHC("", text, "")
	} else {
		w.WriteCC(w.Indent(), text, "")
	}
}

func (n *Node) emitClassOpen(w CodeWriter) {
	n.writePublicState = -1
	if n.Base != "" {
		w.WriteH("class %s : public %s {\n", n.Name, n.Base)
	} else {
		w.WriteH("class %s {\n", n.Name)
	}
	w.SetCurrentClass(n)
}

func (n *Node) widgetBase() string {
	if n.Base != "" {
		return n.Base
	}
	return "Fl_Widget"
}

func (n *Node) emitWidgetClassOpen(w CodeWriter) {
	n.writePublicState = -1
	base := n.Base
	if base == "" {
		base = "Fl_Group"
	}
	w.WriteH("class %s : public %s {\n", n.Name, base)
	w.SetCurrentWidgetClass(n)
	w.WritePublic(Public)
	w.WriteH("  %s(int X, int Y, int W, int H, const char *L = 0);\n", n.Name)
	w.WriteC("%s::%s(int X, int Y, int W, int H, const char *L)\n", n.Name, n.Name)
	w.WriteC("  : %s(X, Y, W, H, L) {\n", base)
	w.IndentMore()
}

// varName returns the variable through which the widget is referenced in
// generated code.
func (n *Node) varName() string {
	if n.Name != "" {
		return n.Name
	}
	return "o"
}

// needsVar reports whether the construction expression must be bound to a
// variable. Named widgets and widgets with children always bind; other
// unnamed ones only when the extras would reference the temporary, which is
// checked with the writer's variable-use probe.
func (n *Node) needsVar(w CodeWriter) bool {
	if n.Name != "" || n.HasChildren() {
		return true
	}
	w.SetVarUsedTest(true)
	w.ResetVarUsed()
	n.emitWidgetExtras(w, "o")
	w.SetVarUsedTest(false)
	return w.VarUsed()
}

func (n *Node) emitWidgetOpen(w CodeWriter) {
	base := n.widgetBase()
	unnamed := n.Name == ""
	needVar := n.needsVar(w)
	braces := unnamed && needVar

	switch {
	case braces:
		w.WriteC("%s{ %s* %s = new %s(%s", w.Indent(), base, n.varName(), base, n.CtorArgs)
	case needVar:
		w.WriteC("%s%s = new %s(%s", w.Indent(), n.Name, base, n.CtorArgs)
	default:
		w.WriteC("%snew %s(%s", w.Indent(), base, n.CtorArgs)
	}
	n.emitLabelArg(w)
	w.WriteC(");\n")

	if !unnamed {
		if w.CurrentClass() != nil || w.CurrentWidgetClass() != nil {
			w.WritePublic(n.Public)
			w.WriteH("  %s *%s;\n", base, n.Name)
		}
	}

	if braces || n.HasChildren() {
		w.IndentMore()
	}
	n.emitWidgetExtras(w, n.varName())
}

func (n *Node) emitWidgetClose(w CodeWriter) {
	group := n.HasChildren()
	unnamed := n.Name == ""
	braces := unnamed && n.needsVar(w)
	if group {
		w.WriteC("%s%s->end();\n", w.Indent(), n.varName())
	}
	if braces || group {
		w.IndentLess()
	}
	if braces {
		w.WriteC("%s} // %s* %s\n", w.Indent(), n.widgetBase(), n.varName())
	}
	w.Tag(TagGeneric, n.UID)
}

// emitWidgetExtras writes the statements that configure the freshly
// constructed widget. Every statement references varname, so running this
// under the variable-use probe answers whether a binding is needed at all.
func (n *Node) emitWidgetExtras(w CodeWriter, varname string) {
	if n.Tooltip != "" {
		w.WriteC("%s%s->tooltip(", w.Indent(), varname)
		n.emitI18nString(w, n.Tooltip)
		w.WriteC(");\n")
	}
	if n.Callback != "" {
		w.WriteC("%s%s->callback((Fl_Callback*)%s);\n", w.Indent(), varname,
			w.UniqueID(n, "cb", n.Name, n.Label))
	}
	if n.Code != "" {
		w.WriteCIndented(n.Code, 0, '\n')
	}
	if len(n.menuItems()) > 0 {
		w.WriteC("%s%s->menu(%s);\n", w.Indent(), varname,
			w.UniqueID(n, "menu", n.Name, n.Label))
	}
}

func (n *Node) emitLabelArg(w CodeWriter) {
	if n.Label == "" {
		return
	}
	w.WriteC(", ")
	n.emitI18nString(w, n.Label)
}

// emitI18nString writes a string literal, wrapped in the project's
// translation call when an i18n flavor is active.
func (n *Node) emitI18nString(w CodeWriter, s string) {
	p := w.Project()
	switch p.I18nType {
	case project.I18nGettext:
		fn := p.GnuFunction
		if fn == "" {
			fn = "gettext"
		}
		w.WriteC("%s(", fn)
		w.WriteCString([]byte(s))
		w.WriteC(")")
	case project.I18nCatgets:
		cat := p.PosFile
		if cat == "" {
			cat = "_catalog"
		}
		w.WriteC("catgets(%s,%s,%d,", cat, p.PosSet, n.UID)
		w.WriteCString([]byte(s))
		w.WriteC(")")
	default:
		w.WriteCString([]byte(s))
	}
}

// emitCallbackStatic writes the static callback shim for this node, once.
// The editable body is bracketed by a generic tag and the callback tag, so
// merge-back folds exactly the body lines.
func (n *Node) emitCallbackStatic(w CodeWriter, tagKind int) {
	if n.Callback == "" {
		return
	}
	if w.ContainsCodePointer(n) {
		return
	}
	cb := w.UniqueID(n, "cb", n.Name, n.Label)
	w.WriteC("\nstatic void %s(%s*, void*) {\n", cb, n.widgetBase())
	w.Tag(TagGeneric, 0)
	w.WriteCIndented(n.Callback, 1, '\n')
	w.Tag(tagKind, n.UID)
	w.WriteC("}\n")
}

// emitImageData writes the widget's inline image bytes as a static array,
// once per node.
func (n *Node) emitImageData(w CodeWriter) {
	if n.Data == nil {
		return
	}
	if w.ContainsCodePointer(&n.Data) {
		return
	}
	name := w.UniqueID(n, "idata", n.Name, n.Label)
	w.WriteC("\nstatic const unsigned char %s[] =\n", name)
	w.WriteCData(n.Data)
	w.WriteC(";\n")
}

// enclosingClass returns the nearest class ancestor, or nil.
func (n *Node) enclosingClass() *Node {
	level := n.Level
	for p := n.prev; p != nil; p = p.prev {
		if p.Level < level {
			if p.IsClass() {
				return p
			}
			level = p.Level
			if level == 0 {
				break
			}
		}
	}
	return nil
}

// menuItems returns the direct menu-item children of a menu widget.
func (n *Node) menuItems() []*Node {
	var items []*Node
	for c := n.next; c != nil && c.Level > n.Level; c = c.next {
		if c.Level == n.Level+1 && c.Kind == KindMenuItem {
			items = append(items, c)
		}
	}
	return items
}

// emitMenuArray writes the static Fl_Menu_Item array describing the menu
// children. Referenced callbacks were emitted just above.
func (n *Node) emitMenuArray(w CodeWriter, items []*Node) {
	name := w.UniqueID(n, "menu", n.Name, n.Label)
	w.WriteC("\nFl_Menu_Item %s[] = {\n", name)
	for _, it := range items {
		w.WriteC(" {")
		w.WriteCString([]byte(it.Label))
		if it.Callback != "" {
			w.WriteC(", 0, (Fl_Callback*)%s, 0},\n", w.UniqueID(it, "cb", it.Name, it.Label))
		} else {
			w.WriteC(", 0, 0, 0},\n")
		}
	}
	w.WriteC(" {0, 0, 0, 0, 0, 0, 0, 0, 0}\n};\n")
	w.Tag(TagGeneric, n.UID)
}
