package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianly1003/observe/internal/config"
	"github.com/brianly1003/observe/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0, HeartbeatSeconds: 30},
		State:   config.StateConfig{Properties: []string{"title", "color"}},
		Watcher: config.WatcherConfig{Enabled: true, DebounceMS: 10},
		Logging: config.LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestNew(t *testing.T) {
	app, err := New(testConfig(t), "1.0.0")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	testutil.AssertEqual(t, "1.0.0", app.version, "version")
	testutil.AssertTrue(t, app.InstanceID() != "", "instance id generated")
	testutil.AssertFalse(t, app.IsRunning(), "not running initially")
	testutil.AssertTrue(t, app.stateWatch == nil, "no watcher without a state file")

	props := app.Document().Properties()
	if len(props) != 2 || props[0] != "color" || props[1] != "title" {
		t.Errorf("unexpected properties %v", props)
	}
}

func TestNew_DuplicateProperty(t *testing.T) {
	cfg := testConfig(t)
	cfg.State.Properties = []string{"title", "title"}

	if _, err := New(cfg, "1.0.0"); err == nil {
		t.Error("expected error for duplicate property")
	}
}

func TestNew_UniqueInstanceIDs(t *testing.T) {
	app1, _ := New(testConfig(t), "1.0.0")
	app2, _ := New(testConfig(t), "1.0.0")

	if app1.InstanceID() == app2.InstanceID() {
		t.Error("each app should have a unique instance ID")
	}
}

func TestApp_StartStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	if err := os.WriteFile(path, []byte("title: hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.State.File = path
	app, err := New(cfg, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx) }()

	testutil.Eventually(t, 2*time.Second, func() bool {
		v, _ := app.Document().Get("title")
		return v == "hello"
	}, "state file loaded")
	testutil.AssertTrue(t, app.IsRunning(), "running")

	if err := app.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}

	cancel()
	select {
	case err := <-done:
		testutil.AssertNoError(t, err, "Start() return")
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
	testutil.AssertFalse(t, app.IsRunning(), "stopped")
	testutil.AssertEqual(t, 0, app.Document().SubscriberCount(), "internal logger detached")
}

func TestApp_LoadOnceWhenWatcherDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	if err := os.WriteFile(path, []byte("color: red\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.State.File = path
	cfg.Watcher.Enabled = false
	app, err := New(cfg, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx) }()

	testutil.Eventually(t, 2*time.Second, func() bool {
		v, _ := app.Document().Get("color")
		return v == "red"
	}, "state file loaded once")

	cancel()
	<-done
}
