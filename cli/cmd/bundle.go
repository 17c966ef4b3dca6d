package cmd

import (
	"github.com/pmxt/bundle/cli/bundle"
	"github.com/pmxt/bundle/cli/cmdcontext"
	"github.com/pmxt/bundle/cli/util"
	"github.com/spf13/cobra"
)

var (
	coreDir   string
	targetDir string
)

// NewBundleCmd creates a new bundle command.
func NewBundleCmd() *cobra.Command {
	bundleCmd := &cobra.Command{
		Use:   "bundle",
		Short: "Stage pre-built server artifacts into the SDK package",
		Long: "Copy the bundled pmxt-core server and its bin directory into the SDK " +
			"package, so that users only need to run 'pip install pmxt' without " +
			"needing to separately install Node.js dependencies",
		Example: `
# Stage the server bundle using the standard monorepo layout.
	$ pmxt-bundle bundle
# Stage the server bundle from a custom core checkout.
	$ pmxt-bundle bundle --core-dir /path/to/core`,
		Run: func(cmd *cobra.Command, args []string) {
			cmdCtx.CommandName = cmd.Name()
			err := internalBundleModule(&cmdCtx, args)
			handleCmdErr(cmd, err)
		},
	}

	bundleCmd.Flags().StringVar(&coreDir, "core-dir", "",
		"Path to the core package root")
	bundleCmd.Flags().StringVar(&targetDir, "target-dir", "",
		"Path to the staging directory inside the SDK package")

	return bundleCmd
}

// fillBundleCtx prepares a bundle context from the configuration
// and flag overrides.
func fillBundleCtx(bundleCtx *bundle.BundleCtx) error {
	opts := *bundleOpts
	if coreDir != "" {
		opts.CoreDir = coreDir
	}
	if targetDir != "" {
		opts.TargetDir = targetDir
	}

	return bundle.FillCtx(bundleCtx, &opts)
}

// internalBundleModule is a default bundle module.
func internalBundleModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if len(args) != 0 {
		return util.NewArgError("bundle does not accept arguments")
	}

	var bundleCtx bundle.BundleCtx
	if err := fillBundleCtx(&bundleCtx); err != nil {
		return err
	}

	return bundle.Run(&bundleCtx)
}
