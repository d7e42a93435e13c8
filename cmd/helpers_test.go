package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/iksnae/thread-harvest/testutil"
)

const testKeyEnv = "THREAD_HARVEST_TEST_KEY"

// setupArchive writes a config file pointing at a temporary archive holding
// the given threads and returns the flags selecting it
func setupArchive(t *testing.T, threads ...*internal.Thread) []string {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(dir, "threads.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	testutil.WriteFile(t, cfgPath, []byte(fmt.Sprintf(
		"store:\n  path: %s\n  snapshot_dir: %s\nsummary:\n  api_key_env: %s\n",
		dbPath, filepath.Join(dir, "snapshots"), testKeyEnv)))

	archive, err := internal.OpenStore(dbPath)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer archive.Close()
	for _, thread := range threads {
		if err := archive.SaveThread(thread); err != nil {
			t.Fatalf("SaveThread() error = %v", err)
		}
	}
	return []string{"--config", cfgPath}
}

// runRoot executes the root command and returns what it wrote to its output
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func findCommand(name string) bool {
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}
