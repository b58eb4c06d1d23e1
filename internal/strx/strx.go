// Package strx writes the flat label/tooltip dump used to seed translation
// catalogs: a plain text list, a gettext .po file, or a catgets .msg file.
package strx

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"veld/internal/design"
	"veld/internal/project"
	"veld/internal/version"
)

// Format selects the output flavor.
type Format int

const (
	// Plain is one escaped string per line.
	Plain Format = iota
	// Po is a gettext catalog with msgid/msgstr pairs.
	Po
	// Msg is a POSIX catgets catalog with numbered entries.
	Msg
)

// FormatForPath derives the format from the file extension, defaulting to
// the project's i18n flavor.
func FormatForPath(path string, prj *project.Settings) Format {
	switch filepath.Ext(path) {
	case ".po":
		return Po
	case ".msg":
		return Msg
	case ".txt":
		return Plain
	}
	switch prj.I18nType {
	case project.I18nGettext:
		return Po
	case project.I18nCatgets:
		return Msg
	}
	return Plain
}

// Write dumps every widget label and tooltip of the tree to path in the
// given format.
func Write(t *design.Tree, prj *project.Settings, path string, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	switch f {
	case Po:
		fmt.Fprintf(w, "# generated by veld version %s\n", version.Number)
		forEachString(t, func(s string) {
			fmt.Fprintf(w, "msgid \"%s\"\n", escape(s))
			fmt.Fprintf(w, "msgstr \"%s\"\n", escape(s))
		})
	case Msg:
		fmt.Fprintf(w, "$ generated by veld version %s\n", version.Number)
		fmt.Fprintf(w, "$set %s\n", prj.PosSet)
		fmt.Fprintf(w, "$quote \"\n")
		i := 1
		forEachString(t, func(s string) {
			fmt.Fprintf(w, "%d \"%s\"\n", i, escape(s))
			i++
		})
	default:
		fmt.Fprintf(w, "# generated by veld version %s\n", version.Number)
		forEachString(t, func(s string) {
			fmt.Fprintf(w, "%s\n", escape(s))
		})
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// forEachString visits the label and tooltip of every widget node, in tree
// order. Strings are NFC-normalized so equivalent labels always dump to the
// same bytes.
func forEachString(t *design.Tree, fn func(string)) {
	for n := t.First(); n != nil; n = n.Next() {
		if !n.IsWidget() {
			continue
		}
		if n.Label != "" {
			fn(norm.NFC.String(n.Label))
		}
		if n.Tooltip != "" {
			fn(norm.NFC.String(n.Tooltip))
		}
	}
}

// escape replaces bytes outside printable ASCII, and the double quote, with
// three-digit octal escapes.
func escape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 32 || c > 126 || c == '"' {
			out = append(out, fmt.Sprintf("\\%03o", c)...)
		} else {
			out = append(out, c)
		}
	}
	return string(out)
}
