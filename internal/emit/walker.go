package emit

import "veld/internal/design"

// stampStart records the current stream offsets into the given ranges when
// source-view mode is on.
func (w *Writer) stampStart(code, header *design.OffsetRange) {
	if !w.sourceView {
		return
	}
	code.Start = w.code.off
	header.Start = w.header.off
}

func (w *Writer) stampEnd(code, header *design.OffsetRange) {
	if !w.sourceView {
		return
	}
	code.End = w.code.off
	header.End = w.header.off
}

// skipSubtree advances past the subtree rooted at q and returns the first
// node outside of it.
func skipSubtree(q *design.Node) *design.Node {
	level := q.Level
	for {
		q = q.Next()
		if q == nil || q.Level <= level {
			return q
		}
	}
}

// emitSubtree recursively emits the code of p, putting the children between
// the prologue and the epilogue, and returns the first sibling whose depth
// is not greater than p's.
//
// Widget classes are reordered: all non-function children first, then the
// epilogue (which closes the generated constructor), then the function
// children as class methods, then the closing `};` in the header.
func (w *Writer) emitSubtree(p *design.Node) *design.Node {
	// The last comment carries the footer; its prologue is deferred to the
	// very end of the file.
	if !(p == w.tree.Last() && p.Is(design.KindComment)) {
		w.stampStart(&p.CodePrologue, &p.HeaderPrologue)
		p.EmitPrologue(w)
		w.stampEnd(&p.CodePrologue, &p.HeaderPrologue)
	}

	var q *design.Node
	if p.IsWidget() && p.IsClass() {
		for q = p.Next(); q != nil && q.Level > p.Level; {
			if !q.Is(design.KindFunction) {
				q = w.emitSubtree(q)
			} else {
				q = skipSubtree(q)
			}
		}

		w.stampStart(&p.CodeEpilogue, &p.HeaderEpilogue)
		p.EmitEpilogue(w)
		w.stampEnd(&p.CodeEpilogue, &p.HeaderEpilogue)

		for q = p.Next(); q != nil && q.Level > p.Level; {
			if q.Is(design.KindFunction) {
				q = w.emitSubtree(q)
			} else {
				q = skipSubtree(q)
			}
		}

		w.WriteH("};\n")
		w.currentWidgetClass = nil
	} else {
		for q = p.Next(); q != nil && q.Level > p.Level; {
			q = w.emitSubtree(q)
		}
		w.stampStart(&p.CodeEpilogue, &p.HeaderEpilogue)
		p.EmitEpilogue(w)
		w.stampEnd(&p.CodeEpilogue, &p.HeaderEpilogue)
	}
	return q
}
