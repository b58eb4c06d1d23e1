package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veld/internal/design"
	"veld/internal/strx"
)

var stringsCmd = &cobra.Command{
	Use:   "strings [flags] <out-file>",
	Short: "Export all labels and tooltips for translation",
	Args:  cobra.ExactArgs(1),
	RunE:  runStrings,
}

func init() {
	stringsCmd.Flags().String("design", "", "design document to export from (required)")
	stringsCmd.Flags().String("format", "", "output format (txt|po|msg); default follows the file extension")
	_ = stringsCmd.MarkFlagRequired("design")
}

func runStrings(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	designPath, err := cmd.Flags().GetString("design")
	if err != nil {
		return err
	}
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	outPath := args[0]
	tree, err := design.Load(designPath)
	if err != nil {
		return err
	}
	settings, _, err := settingsForDesign(designPath)
	if err != nil {
		return err
	}

	var format strx.Format
	switch formatName {
	case "":
		format = strx.FormatForPath(outPath, settings)
	case "txt":
		format = strx.Plain
	case "po":
		format = strx.Po
	case "msg":
		format = strx.Msg
	default:
		return fmt.Errorf("strings: unsupported format %q", formatName)
	}
	return strx.Write(tree, settings, outPath, format)
}
