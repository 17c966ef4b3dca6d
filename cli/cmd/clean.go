package cmd

import (
	"os"

	"github.com/pmxt/bundle/cli/bundle"
	"github.com/pmxt/bundle/cli/cmdcontext"
	"github.com/pmxt/bundle/cli/util"
	"github.com/spf13/cobra"
)

var forceRemove bool

// NewCleanCmd creates clean command.
func NewCleanCmd() *cobra.Command {
	var cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove the staged server bundle from the SDK package",
		Run: func(cmd *cobra.Command, args []string) {
			cmdCtx.CommandName = cmd.Name()
			err := internalCleanModule(&cmdCtx, args)
			handleCmdErr(cmd, err)
		},
	}

	cleanCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "do not ask for confirmation")

	return cleanCmd
}

// internalCleanModule is a default clean module.
func internalCleanModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if len(args) != 0 {
		return util.NewArgError("clean does not accept arguments")
	}

	var bundleCtx bundle.BundleCtx
	if err := fillBundleCtx(&bundleCtx); err != nil {
		return err
	}

	if !forceRemove && util.IsDir(bundleCtx.TargetDir) {
		confirm, err := util.AskConfirm(os.Stdin, "Remove "+
			util.RelativeToCurrentWorkingDir(bundleCtx.TargetDir)+"?")
		if err != nil {
			return err
		}
		if !confirm {
			return util.ErrCmdAbort
		}
	}

	return bundle.Clean(&bundleCtx)
}
