package emit

import (
	"path/filepath"
	"strings"

	"veld/internal/design"
	"veld/internal/project"
	"veld/internal/version"
)

// WriteFiles writes the source and header files for the design tree.
// Existing files are overwritten. Empty paths write to standard output.
// sourceView switches the pass into source-view mode: large payloads are
// abbreviated and per-node byte offsets recorded.
func (w *Writer) WriteFiles(codePath, headerPath string, sourceView bool) error {
	w.sourceView = sourceView
	w.reset()

	var err error
	w.code, err = openSink(codePath)
	if err != nil {
		return err
	}
	w.header, err = openSink(headerPath)
	if err != nil {
		w.code.Close()
		return err
	}

	// A leading comment is usually the copyright notice; it goes out before
	// anything else in both files.
	first := w.tree.First()
	var leading *design.Node
	if first != nil && first.Is(design.KindComment) {
		leading = first
		w.stampStart(&first.CodePrologue, &first.HeaderPrologue)
		first.EmitPrologue(w)
		w.stampEnd(&first.CodePrologue, &first.HeaderPrologue)
		first.CodeEpilogue = first.CodePrologue
		first.HeaderEpilogue = first.HeaderPrologue
		first = first.Next()
	}

	banner := "// generated by veld version " + version.Number + "\n\n"
	w.header.WriteString(banner)
	w.crcWrite(banner)

	guard := HeaderGuard(w.headerName(headerPath))
	w.WriteH("#ifndef %s\n", guard)
	w.WriteH("#define %s\n", guard)

	if !w.prj.AvoidEarlyIncludes {
		w.WriteHOnce("#include <FL/Fl.H>")
	}
	if w.prj.IncludeHeaderFromCode {
		w.writeHeaderInclude(headerPath)
	}
	w.writeI18nPrelude()

	for p := first; p != nil; {
		// all static data of this subtree first, then its nested code
		w.stampStart(&p.CodeStatic, &p.HeaderStatic)
		p.EmitStatic(w)
		w.stampEnd(&p.CodeStatic, &p.HeaderStatic)
		for q := p.Next(); q != nil && q.Level > p.Level; q = q.Next() {
			w.stampStart(&q.CodeStatic, &q.HeaderStatic)
			q.EmitStatic(w)
			w.stampEnd(&q.CodeStatic, &q.HeaderStatic)
		}
		p = w.emitSubtree(p)
	}

	w.WriteH("#endif\n")

	last := w.tree.Last()
	if last != nil && last.Is(design.KindComment) && last != leading {
		w.stampStart(&last.CodePrologue, &last.HeaderPrologue)
		last.EmitPrologue(w)
		w.stampEnd(&last.CodePrologue, &last.HeaderPrologue)
		last.CodeEpilogue = last.CodePrologue
		last.HeaderEpilogue = last.HeaderPrologue
	}

	codeErr := w.code.Close()
	headerErr := w.header.Close()
	if codeErr != nil {
		return codeErr
	}
	return headerErr
}

// headerName picks the name the guard and the source include derive from.
func (w *Writer) headerName(headerPath string) string {
	if headerPath != "" {
		return headerPath
	}
	return w.prj.HeaderFileName
}

// HeaderGuard derives an include-guard macro from the basename of path:
// non-alphanumeric characters become underscores, and a leading underscore
// is added when the first character is not a letter.
func HeaderGuard(path string) string {
	name := filepath.Base(path)
	var b strings.Builder
	if len(name) > 0 && !isAlpha(name[0]) {
		b.WriteByte('_')
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlnum(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}

// writeHeaderInclude emits the `#include "header"` line into the source
// file. In source-view mode the include names the preview header so the
// preview compiles against itself.
func (w *Writer) writeHeaderInclude(headerPath string) {
	switch {
	case w.sourceView:
		w.WriteC("#include \"CodeView.h\"\n")
	case strings.HasPrefix(w.prj.HeaderFileName, ".") && !strings.Contains(w.prj.HeaderFileName, "/"):
		w.WriteC("#include \"%s\"\n", filepath.Base(w.headerName(headerPath)))
	default:
		w.WriteC("#include \"%s\"\n", w.prj.HeaderFileName)
	}
}

// writeI18nPrelude emits the translation preamble selected by the project's
// i18n flavor.
func (w *Writer) writeI18nPrelude() {
	p := w.prj
	if p.I18nType == project.I18nNone {
		return
	}
	include := p.I18nInclude()
	if include == "" {
		return
	}
	conditional := p.I18nConditional()
	if conditional != "" {
		w.WriteC("#ifdef %s\n", conditional)
		w.indentation++
	}
	if include[0] != '<' && include[0] != '"' {
		w.WriteC("#%sinclude \"%s\"\n", w.Indent(), include)
	} else {
		w.WriteC("#%sinclude %s\n", w.Indent(), include)
	}
	if p.I18nType == project.I18nCatgets {
		if p.PosFile != "" {
			w.WriteC("extern nl_catd %s;\n", p.PosFile)
		} else {
			w.WriteC("// Initialize I18N stuff now for menus...\n")
			w.WriteC("#%sinclude <locale.h>\n", w.Indent())
			w.WriteC("static char *_locale = setlocale(LC_MESSAGES, \"\");\n")
			w.WriteC("static nl_catd _catalog = catopen(\"%s\", 0);\n", p.Basename())
		}
	}
	if conditional != "" {
		w.WriteC("#else\n")
		if p.I18nType == project.I18nGettext && p.GnuFunction != "" {
			w.WriteC("#%sifndef %s\n", w.Indent(), p.GnuFunction)
			w.WriteC("#%sdefine %s(text) text\n", w.IndentPlus(1), p.GnuFunction)
			w.WriteC("#%sendif\n", w.Indent())
		}
		if p.I18nType == project.I18nCatgets {
			w.WriteC("#%sifndef catgets\n", w.Indent())
			w.WriteC("#%sdefine catgets(catalog, set, msgid, text) text\n", w.IndentPlus(1))
			w.WriteC("#%sendif\n", w.Indent())
		}
		w.indentation--
		w.WriteC("#endif\n")
	}
	if p.I18nType == project.I18nGettext && p.GnuStaticFunction != "" {
		w.WriteC("#ifndef %s\n", p.GnuStaticFunction)
		w.WriteC("#%sdefine %s(text) text\n", w.IndentPlus(1), p.GnuStaticFunction)
		w.WriteC("#endif\n")
	}
}
