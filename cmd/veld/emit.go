package main

import (
	"fmt"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"veld/internal/design"
	"veld/internal/diag"
	"veld/internal/emit"
	"veld/internal/observ"
	"veld/internal/ui"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] <design.veld> [design.veld...]",
	Short: "Emit source and header files for design documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEmit,
}

func init() {
	emitCmd.Flags().Bool("sourceview", false, "abbreviate large payloads and record per-node offsets")
	emitCmd.Flags().Bool("stdout", false, "write the source stream to standard output")
	emitCmd.Flags().Bool("mergeback", false, "force merge-back tagging on, regardless of the manifest")
	emitCmd.Flags().Int("jobs", runtime.NumCPU(), "number of designs emitted in parallel")
	emitCmd.Flags().Bool("ui", false, "show interactive progress for batch emits")
}

func runEmit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	sourceView, err := cmd.Flags().GetBool("sourceview")
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	forceTags, err := cmd.Flags().GetBool("mergeback")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs < 1 {
		jobs = 1
	}
	withUI, err := cmd.Flags().GetBool("ui")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	if toStdout && len(args) > 1 {
		return fmt.Errorf("emit: --stdout is only supported with a single design")
	}

	timer := observ.NewTimer()
	bag := diag.NewBag()

	var events chan ui.EmitEvent
	uiDone := make(chan struct{})
	if withUI && isTerminal(os.Stdout) && !toStdout {
		events = make(chan ui.EmitEvent, 64)
		go func() {
			defer close(uiDone)
			runEmitProgress(args, events)
		}()
	} else {
		close(uiDone)
	}

	phase := timer.Begin("emit")
	// Каждый документ получает собственный Writer: внутри одного прохода
	// эмиссия строго последовательна.
	var g errgroup.Group
	g.SetLimit(jobs)
	for _, path := range args {
		g.Go(func() error {
			if events != nil {
				events <- ui.EmitEvent{Path: path, Status: "emitting"}
			}
			err := emitOne(path, sourceView, toStdout, forceTags)
			if events != nil {
				status := "done"
				if err != nil {
					status = "failed"
				}
				events <- ui.EmitEvent{Path: path, Status: status, Err: err}
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	runErr := g.Wait()
	if events != nil {
		close(events)
	}
	<-uiDone
	timer.End(phase, fmt.Sprintf("%d design(s)", len(args)))

	if runErr != nil {
		bag.Error("", 0, runErr.Error())
	}
	diag.Render(os.Stderr, bag)
	if timings && !quiet {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	if runErr != nil {
		return fmt.Errorf("emit: failed")
	}
	return nil
}

func emitOne(designPath string, sourceView, toStdout, forceTags bool) error {
	tree, err := design.Load(designPath)
	if err != nil {
		return err
	}
	settings, _, err := settingsForDesign(designPath)
	if err != nil {
		return err
	}
	if forceTags {
		settings.WriteMergebackData = true
	}
	codePath, headerPath := outputPaths(designPath, settings)
	if toStdout {
		codePath = ""
	}
	w := emit.NewWriter(tree, settings)
	return w.WriteFiles(codePath, headerPath, sourceView)
}

func runEmitProgress(files []string, events <-chan ui.EmitEvent) {
	model := ui.NewEmitProgress("emitting designs", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, _ = program.Run()
}
