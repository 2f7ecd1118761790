package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles materializes a map of relative path -> contents under a fresh
// temp dir and returns the dir.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for rel, contents := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "creating test file dir")
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600), "writing test file")
	}
	return dir
}

// cfgArgs turns the file map into --cfg arguments in sorted key order, so
// merge order in tests is deterministic.
func cfgArgs(t *testing.T, files map[string]string) []string {
	t.Helper()

	dir := WriteFiles(t, files)
	keys := make([]string, 0, len(files))
	for rel := range files {
		keys = append(keys, rel)
	}
	sort.Strings(keys)

	var args []string
	for _, rel := range keys {
		args = append(args, "--cfg", filepath.Join(dir, rel))
	}
	return args
}
