package cmdcontext

// CmdCtx is the main structure of the program context.
// Contains within itself other structures of CLI modules.
type CmdCtx struct {
	// Cli - CLI context. Contains flags passed when starting
	// pmxt-bundle and some other parameters.
	Cli CliCtx
	// CommandName contains name of the command.
	CommandName string
}

// CliCtx - CLI context. Contains flags passed when starting
// pmxt-bundle and some other parameters.
type CliCtx struct {
	// Path to pmxt-bundle (bundle.yaml) config.
	ConfigPath string
	// ConfigDir is the configuration file directory. It is treated as
	// the SDK root when resolving relative paths. Current working
	// directory, if there is no config.
	ConfigDir string
	// Verbose logging flag. Enables debug log output.
	Verbose bool
}
