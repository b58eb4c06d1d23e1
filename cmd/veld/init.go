package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"veld/internal/design"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a veld project in the current directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	name := args[0]
	manifestPath := "veld.toml"
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("init: %s already exists", manifestPath)
	}

	manifest := fmt.Sprintf(`[package]
name = %q

[output]
code = %q
header = %q
include_header = true

[mergeback]
enabled = true
`, name, name+".cxx", name+".h")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		return err
	}

	tree := design.NewTree()
	tree.Append(&design.Node{
		Kind:     design.KindComment,
		Code:     "Generated UI for " + name,
		InSource: true,
		InHeader: true,
	})
	tree.Append(&design.Node{
		Kind: design.KindFunction,
		Name: "make_window()",
	})
	designPath := name + ".veld"
	if err := design.Save(designPath, tree); err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("created %s and %s\n", manifestPath, filepath.Clean(designPath))
	}
	return nil
}
