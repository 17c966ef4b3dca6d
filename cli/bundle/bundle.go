package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/apex/log"
	"github.com/otiai10/copy"
	"github.com/pmxt/bundle/cli/config"
	"github.com/pmxt/bundle/cli/util"
)

// defaultDirPermissions is rights used to create folders.
// 0755 - drwxr-xr-x
// We need to give permission for all to execute
// read,write for user and only read for others.
const defaultDirPermissions = 0o755

const (
	// serverDirName is a subdirectory of the target directory holding
	// the bundled server file.
	serverDirName = "server"
	// binDirName is a subdirectory of the target directory holding the
	// mirror of the executable entry points.
	binDirName = "bin"
	// markerFileName is an empty file whose presence makes the target
	// directory an importable Python package.
	markerFileName = "__init__.py"
)

var (
	// ErrNoCoreDir is reported when the core package directory is missing.
	ErrNoCoreDir = errors.New("core directory not found")
	// ErrNoArtifact is reported when the bundled server file is missing.
	ErrNoArtifact = errors.New("bundled server not found")
	// ErrNoBinDir is reported when the bin directory is missing.
	ErrNoBinDir = errors.New("bin directory not found")
)

// BundleCtx contains information for server bundle staging.
type BundleCtx struct {
	// CoreDir is an absolute path to the core package root.
	CoreDir string
	// ServerArtifact is an absolute path to the bundled server file.
	ServerArtifact string
	// BinDir is an absolute path to the source bin directory.
	BinDir string
	// TargetDir is an absolute path to the staging directory inside
	// the SDK package.
	TargetDir string
	// Keep is a list of entry names the sweep of the staged server
	// directory must preserve.
	Keep []string
}

// InputStatus describes the presence of a single required bundle input.
type InputStatus struct {
	// Name is a human readable input name.
	Name string
	// Path is an absolute path of the input.
	Path string
	// Exists reports whether the input is present on the filesystem.
	Exists bool
}

// FillCtx fills the bundle context with absolute paths resolved from bundleOpts.
func FillCtx(bundleCtx *BundleCtx, bundleOpts *config.BundleOpts) error {
	var err error

	if bundleCtx.CoreDir, err = util.JoinAbspath(bundleOpts.CoreDir); err != nil {
		return err
	}
	if bundleCtx.TargetDir, err = util.JoinAbspath(bundleOpts.TargetDir); err != nil {
		return err
	}
	bundleCtx.ServerArtifact = util.JoinPaths(bundleCtx.CoreDir, bundleOpts.ServerArtifact)
	bundleCtx.BinDir = util.JoinPaths(bundleCtx.CoreDir, bundleOpts.BinDir)
	bundleCtx.Keep = bundleOpts.Keep

	return nil
}

// CheckInputs reports the presence of every required bundle input.
func CheckInputs(bundleCtx *BundleCtx) []InputStatus {
	return []InputStatus{
		{"core directory", bundleCtx.CoreDir, util.IsDir(bundleCtx.CoreDir)},
		{"bundled server", bundleCtx.ServerArtifact, util.IsRegularFile(bundleCtx.ServerArtifact)},
		{"bin directory", bundleCtx.BinDir, util.IsDir(bundleCtx.BinDir)},
	}
}

// CheckPreconditions verifies that all bundle inputs exist. It runs before
// any filesystem mutation, so a failed check leaves no side effects.
func CheckPreconditions(bundleCtx *BundleCtx) error {
	if !util.IsDir(bundleCtx.CoreDir) {
		return fmt.Errorf("%w at %q: the bundler must be run from the monorepo structure",
			ErrNoCoreDir, bundleCtx.CoreDir)
	}

	if !util.IsRegularFile(bundleCtx.ServerArtifact) {
		return fmt.Errorf("%w at %q: run 'npm run build && npm run bundle:server' in core/",
			ErrNoArtifact, bundleCtx.ServerArtifact)
	}

	if !util.IsDir(bundleCtx.BinDir) {
		return fmt.Errorf("%w at %q", ErrNoBinDir, bundleCtx.BinDir)
	}

	return nil
}

// sweepServerDir removes every entry of the staged server directory that is
// neither the artifact itself nor named in keep. Directories are removed
// recursively.
func sweepServerDir(serverDir, artifactName string, keep []string) error {
	entries, err := os.ReadDir(serverDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.Name() == artifactName || slices.Contains(keep, entry.Name()) {
			continue
		}

		entryPath := filepath.Join(serverDir, entry.Name())
		log.Debugf("Removing extra entry %q from the staged server directory.", entry.Name())
		if entry.IsDir() {
			err = os.RemoveAll(entryPath)
		} else {
			err = os.Remove(entryPath)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// createMarkerFile creates an empty package marker file.
// Existing marker is left as is.
func createMarkerFile(markerPath string) error {
	file, err := os.OpenFile(markerPath, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return file.Close()
}

// Run stages the built server artifacts into the target directory:
// the bundled server file goes to the server subdirectory, the bin
// directory is mirrored, extras are swept and the package marker file
// is created. Repeated runs with unchanged inputs are idempotent.
func Run(bundleCtx *BundleCtx) error {
	if err := CheckPreconditions(bundleCtx); err != nil {
		return err
	}

	if err := util.CreateDirectory(bundleCtx.TargetDir, defaultDirPermissions); err != nil {
		return err
	}

	serverDir := util.JoinPaths(bundleCtx.TargetDir, serverDirName)
	if err := util.CreateDirectory(serverDir, defaultDirPermissions); err != nil {
		return err
	}

	log.Infof("Copying bundled server from %s.",
		util.RelativeToCurrentWorkingDir(bundleCtx.ServerArtifact))
	artifactName := filepath.Base(bundleCtx.ServerArtifact)
	if err := util.CopyFilePreserve(bundleCtx.ServerArtifact,
		util.JoinPaths(serverDir, artifactName)); err != nil {
		return err
	}

	// The bin mirror is replaced wholesale, never merged.
	binDir := util.JoinPaths(bundleCtx.TargetDir, binDirName)
	log.Infof("Copying bin from %s.", util.RelativeToCurrentWorkingDir(bundleCtx.BinDir))
	if err := os.RemoveAll(binDir); err != nil {
		return err
	}
	if err := copy.Copy(bundleCtx.BinDir, binDir); err != nil {
		return err
	}

	if err := sweepServerDir(serverDir, artifactName, bundleCtx.Keep); err != nil {
		return err
	}

	if err := createMarkerFile(util.JoinPaths(bundleCtx.TargetDir, markerFileName)); err != nil {
		return err
	}

	log.Infof("Server bundle is staged in %s.",
		util.RelativeToCurrentWorkingDir(bundleCtx.TargetDir))

	return nil
}

// Clean removes the staged bundle directory entirely.
func Clean(bundleCtx *BundleCtx) error {
	if !util.IsDir(bundleCtx.TargetDir) {
		log.Infof("Nothing to clean: %s does not exist.",
			util.RelativeToCurrentWorkingDir(bundleCtx.TargetDir))
		return nil
	}

	if err := os.RemoveAll(bundleCtx.TargetDir); err != nil {
		return err
	}
	log.Infof("Removed staged bundle %s.",
		util.RelativeToCurrentWorkingDir(bundleCtx.TargetDir))

	return nil
}
