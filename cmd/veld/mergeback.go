package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veld/internal/design"
	"veld/internal/diag"
	"veld/internal/mergeback"
	"veld/internal/ui"
)

var mergebackCmd = &cobra.Command{
	Use:   "mergeback [flags] <source-file>",
	Short: "Merge hand edits in an emitted source file back into the design",
	Args:  cobra.ExactArgs(1),
	RunE:  runMergeback,
}

func init() {
	mergebackCmd.Flags().String("design", "", "design document the source file was emitted from (required)")
	mergebackCmd.Flags().Bool("check", false, "only report what changed, do not modify the design")
	mergebackCmd.Flags().Bool("safe", false, "merge only when there are no structural conflicts")
	mergebackCmd.Flags().Bool("force", false, "merge without asking, even with conflicts")
	_ = mergebackCmd.MarkFlagRequired("design")
}

func runMergeback(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	designPath, err := cmd.Flags().GetString("design")
	if err != nil {
		return err
	}
	checkOnly, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	safe, err := cmd.Flags().GetBool("safe")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	sourcePath := args[0]
	tree, err := design.Load(designPath)
	if err != nil {
		return err
	}
	settings, _, err := settingsForDesign(designPath)
	if err != nil {
		return err
	}
	// без тегов в файле мержить нечего
	settings.WriteMergebackData = true

	bag := diag.NewBag()
	defer diag.Render(os.Stderr, bag)

	switch {
	case checkOnly:
		ret, err := mergeback.MergeBack(tree, settings, sourcePath, mergeback.Check)
		if err != nil {
			return err
		}
		if ret < 0 {
			bag.Error(sourcePath, 0, "malformed merge-back tag")
			return fmt.Errorf("mergeback: tag error")
		}
		reportCheck(bag, sourcePath, ret, quiet)
		return nil
	case force, safe:
		task := mergeback.Go
		if safe {
			task = mergeback.GoSafe
		}
		ret, err := mergeback.MergeBack(tree, settings, sourcePath, task)
		if err != nil {
			return err
		}
		return finishMerge(bag, tree, designPath, sourcePath, ret, quiet)
	default:
		prompt := func(c mergeback.Counters) bool {
			if !isTerminal(os.Stdout) {
				// non-interactive callers must pick --safe or --force
				return false
			}
			merge, promptErr := ui.PromptMerge(sourcePath, c)
			if promptErr != nil {
				return false
			}
			return merge
		}
		_, ret, err := mergeback.Interactive(tree, settings, sourcePath, prompt)
		if err != nil {
			return err
		}
		return finishMerge(bag, tree, designPath, sourcePath, ret, quiet)
	}
}

func reportCheck(bag *diag.Bag, path string, bits int, quiet bool) {
	if bits == 0 {
		if !quiet {
			bag.Info(path, "no differences")
		}
		return
	}
	if bits&mergeback.BitStructure != 0 {
		bag.Warning(path, 0, "structural blocks were modified; these changes cannot be merged")
	}
	if bits&mergeback.BitCode != 0 {
		bag.Info(path, "code blocks were modified")
	}
	if bits&mergeback.BitCallback != 0 {
		bag.Info(path, "callbacks were modified")
	}
	if bits&mergeback.BitUIDNotFound != 0 {
		bag.Warning(path, 0, "some modified blocks reference no node in the design")
	}
}

func finishMerge(bag *diag.Bag, tree *design.Tree, designPath, sourcePath string, ret int, quiet bool) error {
	switch {
	case ret < 0:
		bag.Error(sourcePath, 0, "merge-back not possible: tag error or structural conflict")
		return fmt.Errorf("mergeback: conflict")
	case ret == 0:
		if !quiet {
			bag.Info(sourcePath, "nothing merged")
		}
		return nil
	default:
		if err := design.Save(designPath, tree); err != nil {
			return err
		}
		if !quiet {
			bag.Info(designPath, "merged changes back into the design")
		}
		return nil
	}
}
