package configure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/mitchellh/mapstructure"
	"github.com/pmxt/bundle/cli/cmdcontext"
	"github.com/pmxt/bundle/cli/config"
	"github.com/pmxt/bundle/cli/util"
)

const (
	// ConfigName is a default name of the bundler configuration file.
	ConfigName = "bundle.yaml"
)

const (
	// CoreDirPath is a default location of the core package
	// relative to the SDK root.
	CoreDirPath = "../../core"
	// TargetDirPath is a default location of the staged bundle
	// relative to the SDK root.
	TargetDirPath = "pmxt/_server"
	// ServerArtifactPath is a default location of the bundled server
	// relative to the core directory.
	ServerArtifactPath = "dist/server/bundled.js"
	// BinDirPath is a default location of the executable entry points
	// relative to the core directory.
	BinDirPath = "bin"
	// PycacheDirName is the interpreter bytecode cache directory kept
	// during the staged server directory sweep.
	PycacheDirName = "__pycache__"
)

// GetDefaultBundleOpts returns `BundleOpts` filled with default values.
func GetDefaultBundleOpts() *config.BundleOpts {
	return &config.BundleOpts{
		CoreDir:        CoreDirPath,
		TargetDir:      TargetDirPath,
		ServerArtifact: ServerArtifactPath,
		BinDir:         BinDirPath,
		Keep:           []string{PycacheDirName},
	}
}

// adjustPathWithConfigLocation adjust provided filePath with configDir.
// Absolute filePath is returned as is. Relative filePath is calculated relative to configDir.
// If filePath is empty, defaultPath is appended to configDir.
func adjustPathWithConfigLocation(filePath, configDir, defaultPath string) (string, error) {
	if filePath == "" {
		filePath = defaultPath
	}
	if filepath.IsAbs(filePath) {
		return filePath, nil
	}
	return filepath.Abs(filepath.Join(configDir, filePath))
}

// updateBundleOpts resolves directory paths in config relative to specified location, and
// sets uninitialized values to defaults.
func updateBundleOpts(bundleOpts *config.BundleOpts, configDir string) error {
	var err error

	for _, dir := range []struct {
		path        *string
		defaultPath string
	}{
		{&bundleOpts.CoreDir, CoreDirPath},
		{&bundleOpts.TargetDir, TargetDirPath},
	} {
		if *dir.path, err = adjustPathWithConfigLocation(*dir.path, configDir,
			dir.defaultPath); err != nil {
			return err
		}
	}

	if bundleOpts.ServerArtifact == "" {
		bundleOpts.ServerArtifact = ServerArtifactPath
	}
	if bundleOpts.BinDir == "" {
		bundleOpts.BinDir = BinDirPath
	}
	if bundleOpts.Keep == nil {
		bundleOpts.Keep = []string{PycacheDirName}
	}

	return nil
}

// decodeConfig decodes a raw configuration map into the config structure.
func decodeConfig(input map[string]any, cfg *config.Config) error {
	decoderConfig := mapstructure.DecoderConfig{
		Result: cfg,
	}
	decoder, err := mapstructure.NewDecoder(&decoderConfig)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// GetBundleOpts returns bundler options from the config file
// located at path configurePath. If configurePath is empty,
// options filled with default values are returned.
func GetBundleOpts(configurePath string) (*config.BundleOpts, error) {
	cfg := config.Config{BundleConfig: GetDefaultBundleOpts()}

	configDir := ""
	if configurePath == "" {
		var err error
		if configDir, err = os.Getwd(); err != nil {
			return nil, err
		}
	} else {
		rawConfigOpts, err := util.ParseYAML(configurePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pmxt-bundle configuration: %s", err)
		}

		if err := decodeConfig(rawConfigOpts, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse pmxt-bundle configuration: %s", err)
		}

		if cfg.BundleConfig == nil {
			return nil,
				fmt.Errorf("failed to parse pmxt-bundle configuration: missing bundle section")
		}

		if configDir, err = filepath.Abs(filepath.Dir(configurePath)); err != nil {
			return nil, err
		}
	}

	if err := updateBundleOpts(cfg.BundleConfig, configDir); err != nil {
		return nil, err
	}

	return cfg.BundleConfig, nil
}

// Cli performs initial CLI configuration: sets the log level and
// locates the configuration file.
func Cli(cmdCtx *cmdcontext.CmdCtx) error {
	if cmdCtx.Cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cmdCtx.Cli.ConfigPath != "" {
		if _, err := os.Stat(cmdCtx.Cli.ConfigPath); err != nil {
			return fmt.Errorf("specified path to the configuration file is invalid: %s", err)
		}
	} else {
		// Look for bundle.yaml in the current directory. A missing
		// config is fine: defaults describe the standard SDK layout.
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to detect current directory: %s", err)
		}
		configPath, err := util.GetYamlFileName(filepath.Join(cwd, ConfigName), true)
		if err == nil {
			cmdCtx.Cli.ConfigPath = configPath
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to get access to configuration file: %s", err)
		}
	}

	var err error
	if cmdCtx.Cli.ConfigPath != "" {
		if cmdCtx.Cli.ConfigPath, err = filepath.Abs(cmdCtx.Cli.ConfigPath); err != nil {
			return fmt.Errorf("cannot determine config file path: %s", err)
		}
		cmdCtx.Cli.ConfigDir = filepath.Dir(cmdCtx.Cli.ConfigPath)
	} else {
		if cmdCtx.Cli.ConfigDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to detect current directory: %s", err)
		}
	}

	log.Debugf("SDK root directory: %s", cmdCtx.Cli.ConfigDir)

	return nil
}
