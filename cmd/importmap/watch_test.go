// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"importmap-cli/internal/issue"
	"importmap-cli/internal/testutil"
	"importmap-cli/internal/watch"
)

// lockedBuffer is written by the watcher goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, buf *lockedBuffer, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in:\n%s", want, buf.String())
}

// startCLI runs the root command until the returned stop function cancels it.
func startCLI(t *testing.T, stdout, stderr *lockedBuffer, args ...string) (stop func() error) {
	t.Helper()

	app := NewApp(Dependencies{
		Config: defaultProvider(),
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: stderr,
	})
	root := NewRootCommand(app)
	root.SetArgs(args)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- root.ExecuteContext(ctx) }()

	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("command did not stop after cancellation")
			return nil
		}
	}
}

func TestParseCommand_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapPath := testutil.MustWriteFile(t, dir, "import_map.json", `{"imports": {"a": "/a.js"}}`)

	var stdout, stderr lockedBuffer
	stop := startCLI(t, &stdout, &stderr, "parse", "--watch", "--debounce", "50ms", "--base-url", testBase, mapPath)

	waitFor(t, &stdout, "a => https://e.com/a.js")
	waitFor(t, &stderr, "watching for changes")

	if err := os.WriteFile(mapPath, []byte(`{"imports": {"b": "/b.js"}}`), 0o644); err != nil {
		t.Fatalf("rewrite map: %v", err)
	}
	waitFor(t, &stdout, "b => https://e.com/b.js")

	if err := os.WriteFile(mapPath, []byte(`{"imports": [`), 0o644); err != nil {
		t.Fatalf("break map: %v", err)
	}
	waitFor(t, &stderr, "Error: ")

	if err := stop(); err != nil {
		t.Fatalf("watch should stop cleanly on cancellation: %v", err)
	}
}

func TestParseCommand_WatchRejectsStdin(t *testing.T) {
	t.Parallel()

	res := runCLI(t, defaultProvider(), `{}`, "parse", "--watch", "--base-url", testBase, "-")
	if !errors.Is(res.err, ErrWatchStdin) {
		t.Fatalf("error = %v, want ErrWatchStdin", res.err)
	}
	var ae *issue.ActionableError
	if !errors.As(res.err, &ae) || len(ae.Suggestions) == 0 {
		t.Errorf("error should carry a suggestion: %v", res.err)
	}
}

func TestParseCommand_WatchInvalidIgnore(t *testing.T) {
	t.Parallel()

	mapPath := testutil.MustWriteFile(t, t.TempDir(), "import_map.json", `{}`)
	res := runCLI(t, defaultProvider(), "", "parse", "--watch", "--ignore", "[unclosed", mapPath)
	if !errors.Is(res.err, watch.ErrInvalidPattern) {
		t.Fatalf("error = %v, want ErrInvalidPattern", res.err)
	}
}

func TestDenoCommand_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "deno.json", `{"importMap": "./maps/import_map.json"}`)
	mapPath := testutil.MustWriteFile(t, dir, "maps/import_map.json", `{"imports": {"a": "./a.js"}}`)

	var stdout, stderr lockedBuffer
	stop := startCLI(t, &stdout, &stderr, "deno", "--watch", "--debounce", "50ms", "--ignore", "*.bak", dir)

	waitFor(t, &stdout, "a => ")
	waitFor(t, &stderr, "watching for changes")

	// the import map named by deno.json lives outside the config directory
	if err := os.WriteFile(mapPath, []byte(`{"imports": {"b": "./b.js"}}`), 0o644); err != nil {
		t.Fatalf("rewrite map: %v", err)
	}
	waitFor(t, &stdout, "b => ")

	// a deno.jsonc next to deno.json matches the config pattern
	if err := os.WriteFile(filepath.Join(dir, "deno.jsonc"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write deno.jsonc: %v", err)
	}
	waitFor(t, &stderr, "deno.jsonc")

	if err := stop(); err != nil {
		t.Fatalf("watch should stop cleanly on cancellation: %v", err)
	}
}
