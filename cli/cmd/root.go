package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pmxt/bundle/cli/cmdcontext"
	"github.com/pmxt/bundle/cli/config"
	"github.com/pmxt/bundle/cli/configure"
	"github.com/spf13/cobra"
)

var (
	cmdCtx     cmdcontext.CmdCtx
	bundleOpts *config.BundleOpts
	rootCmd    *cobra.Command
)

// NewCmdRoot creates a new root command.
func NewCmdRoot() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pmxt-bundle",
		Short: "pmxt server bundler",
		Long: "Utility for staging pre-built pmxt-core server artifacts " +
			"into the Python SDK package",
		Example: `$ pmxt-bundle bundle
  $ pmxt-bundle check
  $ pmxt-bundle clean -f`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cmdCtx.Cli.ConfigPath, "cfg", "c",
		"", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&cmdCtx.Cli.Verbose, "verbose", "V",
		false, "Verbose output")

	rootCmd.AddCommand(
		NewBundleCmd(),
		NewCheckCmd(),
		NewCleanCmd(),
		NewVersionCmd(),
	)

	rootCmd.InitDefaultHelpCmd()

	log.SetHandler(cli.Default)

	return rootCmd
}

// Execute root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf(err.Error())
	}
}

// InitRoot initializes global flags and loads the bundler configuration.
func InitRoot() {
	rootCmd = NewCmdRoot()
	rootCmd.ParseFlags(os.Args)

	if err := configure.Cli(&cmdCtx); err != nil {
		log.Fatalf("Failed to configure pmxt-bundle: %s", err)
	}

	var err error
	bundleOpts, err = configure.GetBundleOpts(cmdCtx.Cli.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to get pmxt-bundle configuration: %s", err)
	}
}
