package bundle

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pmxt/bundle/cli/config"
	"github.com/pmxt/bundle/cli/configure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOpts returns bundle options pointing into tempDir.
func newTestOpts(tempDir string) *config.BundleOpts {
	return &config.BundleOpts{
		CoreDir:        filepath.Join(tempDir, "core"),
		TargetDir:      filepath.Join(tempDir, "sdk", "pmxt", "_server"),
		ServerArtifact: configure.ServerArtifactPath,
		BinDir:         configure.BinDirPath,
		Keep:           []string{configure.PycacheDirName},
	}
}

// createCoreTree creates a valid core package layout in tempDir.
func createCoreTree(t *testing.T, tempDir string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "core", "dist", "server"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(tempDir, "core", "dist", "server", "bundled.js"),
		[]byte("server bundle contents"), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "core", "bin", "tools"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "core", "bin", "pmxt"),
		[]byte("#!/bin/sh\nexec node bundled.js\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "core", "bin", "tools", "probe"),
		[]byte("probe"), 0o755))
}

// listTree returns sorted relative paths of all entries under root,
// directories suffixed with a separator.
func listTree(t *testing.T, root string) []string {
	t.Helper()

	paths := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			relPath += string(filepath.Separator)
		}
		paths = append(paths, relPath)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

// requireSameTree checks that dst is a full mirror of src.
func requireSameTree(t *testing.T, src, dst string) {
	t.Helper()

	require.Equal(t, listTree(t, src), listTree(t, dst))
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		require.NoError(t, err)
		srcContent, err := os.ReadFile(path)
		require.NoError(t, err)
		dstContent, err := os.ReadFile(filepath.Join(dst, relPath))
		require.NoError(t, err)
		require.Equal(t, srcContent, dstContent, "content mismatch for %s", relPath)
		return nil
	})
	require.NoError(t, err)
}

func TestFillCtx(t *testing.T) {
	tempDir := t.TempDir()

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	assert.Equal(t, filepath.Join(tempDir, "core"), bundleCtx.CoreDir)
	assert.Equal(t, filepath.Join(tempDir, "core", "dist", "server", "bundled.js"),
		bundleCtx.ServerArtifact)
	assert.Equal(t, filepath.Join(tempDir, "core", "bin"), bundleCtx.BinDir)
	assert.Equal(t, filepath.Join(tempDir, "sdk", "pmxt", "_server"), bundleCtx.TargetDir)
	assert.Equal(t, []string{"__pycache__"}, bundleCtx.Keep)
}

func TestRunMissingCoreDir(t *testing.T) {
	tempDir := t.TempDir()

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	err := Run(&bundleCtx)
	require.ErrorIs(t, err, ErrNoCoreDir)
	// Fail-fast: no mutation happened.
	assert.NoDirExists(t, bundleCtx.TargetDir)
}

func TestRunMissingArtifact(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)
	require.NoError(t,
		os.Remove(filepath.Join(tempDir, "core", "dist", "server", "bundled.js")))

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	err := Run(&bundleCtx)
	require.ErrorIs(t, err, ErrNoArtifact)
	assert.NoDirExists(t, bundleCtx.TargetDir)
}

func TestRunMissingBinDir(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)
	require.NoError(t, os.RemoveAll(filepath.Join(tempDir, "core", "bin")))

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	err := Run(&bundleCtx)
	require.ErrorIs(t, err, ErrNoBinDir)
	assert.NoDirExists(t, bundleCtx.TargetDir)
}

func TestRunFreshTarget(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))
	require.NoError(t, Run(&bundleCtx))

	artifactPath := filepath.Join(bundleCtx.TargetDir, "server", "bundled.js")
	content, err := os.ReadFile(artifactPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("server bundle contents"), content)

	requireSameTree(t, bundleCtx.BinDir, filepath.Join(bundleCtx.TargetDir, "bin"))

	markerInfo, err := os.Stat(filepath.Join(bundleCtx.TargetDir, "__init__.py"))
	require.NoError(t, err)
	assert.Zero(t, markerInfo.Size())
}

func TestRunIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	require.NoError(t, Run(&bundleCtx))
	firstLayout := listTree(t, bundleCtx.TargetDir)

	require.NoError(t, Run(&bundleCtx))
	assert.Equal(t, firstLayout, listTree(t, bundleCtx.TargetDir))
}

func TestRunSweepsStrays(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	// Leftovers from a previous run.
	serverDir := filepath.Join(bundleCtx.TargetDir, "server")
	require.NoError(t, os.MkdirAll(filepath.Join(serverDir, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(serverDir, "bundled.js.map"),
		[]byte("map"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(serverDir, "__pycache__"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(serverDir, "__pycache__", "loader.cpython-311.pyc"),
		[]byte{0xca, 0xfe}, 0o644))

	require.NoError(t, Run(&bundleCtx))

	assert.Equal(t, []string{
		"__pycache__" + string(filepath.Separator),
		filepath.Join("__pycache__", "loader.cpython-311.pyc"),
		"bundled.js",
	}, listTree(t, serverDir))
}

func TestRunReplacesBin(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	// Stale mirror with a file that no longer exists in the source.
	staleBinDir := filepath.Join(bundleCtx.TargetDir, "bin")
	require.NoError(t, os.MkdirAll(staleBinDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staleBinDir, "removed_tool"),
		[]byte("old"), 0o755))

	require.NoError(t, Run(&bundleCtx))

	assert.NoFileExists(t, filepath.Join(staleBinDir, "removed_tool"))
	requireSameTree(t, bundleCtx.BinDir, staleBinDir)
}

func TestRunKeepsMarkerContent(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	require.NoError(t, os.MkdirAll(bundleCtx.TargetDir, 0o755))
	markerPath := filepath.Join(bundleCtx.TargetDir, "__init__.py")
	require.NoError(t, os.WriteFile(markerPath, []byte("# generated\n"), 0o644))

	require.NoError(t, Run(&bundleCtx))

	content, err := os.ReadFile(markerPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("# generated\n"), content)
}

func TestCheckInputs(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)
	require.NoError(t, os.RemoveAll(filepath.Join(tempDir, "core", "bin")))

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))

	statuses := CheckInputs(&bundleCtx)
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Exists)
	assert.True(t, statuses[1].Exists)
	assert.False(t, statuses[2].Exists)
	assert.Equal(t, "bin directory", statuses[2].Name)
}

func TestClean(t *testing.T) {
	tempDir := t.TempDir()
	createCoreTree(t, tempDir)

	var bundleCtx BundleCtx
	require.NoError(t, FillCtx(&bundleCtx, newTestOpts(tempDir)))
	require.NoError(t, Run(&bundleCtx))

	require.NoError(t, Clean(&bundleCtx))
	assert.NoDirExists(t, bundleCtx.TargetDir)

	// Cleaning a missing target is not an error.
	require.NoError(t, Clean(&bundleCtx))
}
