package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianly1003/observe/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "today", "abc123")
	out, err := execute(t, "version")
	testutil.AssertNoError(t, err, "version")
	testutil.AssertContains(t, out, "observe 1.2.3", "version line")
	testutil.AssertContains(t, out, "abc123", "git commit")
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: 9123\nstate:\n  properties: [title]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "config", "show", "--config", path)
	testutil.AssertNoError(t, err, "config show")
	testutil.AssertContains(t, out, "port: 9123", "port")
	testutil.AssertContains(t, out, "- title", "properties")
}

func TestBenchCommand(t *testing.T) {
	_, err := execute(t, "bench", "--subscribers", "5", "--senders", "2", "--sends", "10", "--cancel-every", "2")
	testutil.AssertNoError(t, err, "bench")
}

func TestBenchCommand_InvalidOptions(t *testing.T) {
	t.Cleanup(func() { benchOpts.Subscribers = 100 })
	_, err := execute(t, "bench", "--subscribers", "0")
	testutil.AssertError(t, err, "bench with zero subscribers")
}
