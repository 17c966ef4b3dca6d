package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pmxt/bundle/cli/bundle"
	"github.com/pmxt/bundle/cli/cmdcontext"
	"github.com/pmxt/bundle/cli/util"
	"github.com/spf13/cobra"
)

var printGreen = color.New(color.FgGreen).SprintFunc()
var printRed = color.New(color.FgRed).SprintFunc()

// NewCheckCmd creates a new check command.
func NewCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check that all bundle inputs are present, without staging anything",
		Run: func(cmd *cobra.Command, args []string) {
			cmdCtx.CommandName = cmd.Name()
			err := internalCheckModule(&cmdCtx, args)
			handleCmdErr(cmd, err)
		},
	}

	checkCmd.Flags().StringVar(&coreDir, "core-dir", "",
		"Path to the core package root")
	checkCmd.Flags().StringVar(&targetDir, "target-dir", "",
		"Path to the staging directory inside the SDK package")

	return checkCmd
}

// internalCheckModule is a default check module.
func internalCheckModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if len(args) != 0 {
		return util.NewArgError("check does not accept arguments")
	}

	var bundleCtx bundle.BundleCtx
	if err := fillBundleCtx(&bundleCtx); err != nil {
		return err
	}

	missing := 0
	for _, status := range bundle.CheckInputs(&bundleCtx) {
		if status.Exists {
			fmt.Printf("%s %s: %s\n", printGreen("OK     "), status.Name,
				util.RelativeToCurrentWorkingDir(status.Path))
		} else {
			missing++
			fmt.Printf("%s %s: %s\n", printRed("MISSING"), status.Name,
				util.RelativeToCurrentWorkingDir(status.Path))
		}
	}

	if missing != 0 {
		return fmt.Errorf("%d of 3 bundle inputs are missing", missing)
	}

	return nil
}
