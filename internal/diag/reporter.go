package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
)

// Render writes every diagnostic in the bag to out, one per line.
// Colors are controlled globally through color.NoColor.
func Render(out io.Writer, b *Bag) {
	for _, d := range b.Items() {
		var label string
		switch d.Severity {
		case SevError:
			label = errColor.Sprint("error")
		case SevWarning:
			label = warnColor.Sprint("warning")
		default:
			label = infoColor.Sprint("info")
		}
		switch {
		case d.Path != "" && d.Line > 0:
			fmt.Fprintf(out, "%s: %s:%d: %s\n", label, d.Path, d.Line, d.Message)
		case d.Path != "":
			fmt.Fprintf(out, "%s: %s: %s\n", label, d.Path, d.Message)
		default:
			fmt.Fprintf(out, "%s: %s\n", label, d.Message)
		}
	}
}
