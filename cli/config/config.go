package config

// Config used to store all information from the
// bundle.yaml configuration file.
type Config struct {
	BundleConfig *BundleOpts `mapstructure:"bundle" yaml:"bundle"`
}

// BundleOpts stores information about server bundling configuration.
// Filled in when parsing the bundle.yaml configuration file.
//
// bundle.yaml file format:
// bundle:
//   core_dir: path
//   target_dir: path
//   server_artifact: path
//   bin_dir: path
//   keep: [name, ...]
type BundleOpts struct {
	// CoreDir is a path to the core package root that holds build
	// outputs of the server component. Relative paths are resolved
	// against the SDK root.
	CoreDir string `mapstructure:"core_dir" yaml:"core_dir"`
	// TargetDir is a path to the directory inside the SDK package
	// where server artifacts are staged. Relative paths are resolved
	// against the SDK root.
	TargetDir string `mapstructure:"target_dir" yaml:"target_dir"`
	// ServerArtifact is a path to the bundled server file, relative
	// to CoreDir.
	ServerArtifact string `mapstructure:"server_artifact" yaml:"server_artifact"`
	// BinDir is a path to the directory of executable entry points,
	// relative to CoreDir.
	BinDir string `mapstructure:"bin_dir" yaml:"bin_dir"`
	// Keep is a list of directory names the sweep of the staged server
	// directory must preserve. Tooling-generated caches go here.
	Keep []string `mapstructure:"keep" yaml:"keep"`
}
