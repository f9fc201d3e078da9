// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// TestBuiltinCommandTxtarCoverage verifies that every non-hidden, runnable,
// leaf command has at least one testscript (.txtar) file exercising it in
// tests/cli/testdata/.
func TestBuiltinCommandTxtarCoverage(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	commands := collectLeafCommands(rootCmd)

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file path via runtime.Caller")
	}
	// cmd/importmap/coverage_test.go → cmd/importmap/ → cmd/ → project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err != nil {
		t.Fatalf("project root detection failed: go.mod not found at %s", projectRoot)
	}
	testdataDir := filepath.Join(projectRoot, "tests", "cli", "testdata")

	covered := scanTxtarCoverage(t, testdataDir, commands)

	var uncovered []string
	for cmdPath := range commands {
		if !covered[cmdPath] {
			uncovered = append(uncovered, cmdPath)
		}
	}

	sort.Strings(uncovered)
	for _, cmdPath := range uncovered {
		t.Errorf("uncovered command: %q has no txtar test in %s", cmdPath, testdataDir)
	}
}

// collectLeafCommands returns the set of leaf (no visible children),
// non-hidden, runnable command paths.
func collectLeafCommands(root *cobra.Command) map[string]bool {
	commands := make(map[string]bool)
	walkCobraTree(root, "", commands)
	return commands
}

func walkCobraTree(cmd *cobra.Command, prefix string, commands map[string]bool) {
	for _, child := range cmd.Commands() {
		if child.Hidden {
			continue
		}

		childPath := child.Name()
		if prefix != "" {
			childPath = prefix + " " + child.Name()
		}

		visibleChildren := 0
		for _, grandchild := range child.Commands() {
			if !grandchild.Hidden {
				visibleChildren++
			}
		}

		// Routing nodes such as bare `importmap config` only print help.
		if visibleChildren == 0 && (child.RunE != nil || child.Run != nil) {
			commands[childPath] = true
		}

		walkCobraTree(child, childPath, commands)
	}
}

// scanTxtarCoverage extracts command paths from `exec importmap ...` and
// `! exec importmap ...` lines of every .txtar file in testdataDir.
func scanTxtarCoverage(t *testing.T, testdataDir string, knownCommands map[string]bool) map[string]bool {
	t.Helper()
	covered := make(map[string]bool)

	execRe := regexp.MustCompile(`^!?\s*exec\s+importmap\s+(.+)`)

	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		t.Fatalf("failed to read testdata directory %s: %v", testdataDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txtar") {
			continue
		}
		scanTxtarFile(t, filepath.Join(testdataDir, entry.Name()), execRe, knownCommands, covered)
	}

	return covered
}

func scanTxtarFile(t *testing.T, filePath string, execRe *regexp.Regexp, knownCommands, covered map[string]bool) {
	t.Helper()

	f, err := os.Open(filePath)
	if err != nil {
		t.Errorf("failed to open %s: %v", filePath, err)
		return
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := execRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		if cmdPath := matchLongestCommand(strings.Fields(m[1]), knownCommands); cmdPath != "" {
			covered[cmdPath] = true
		}
	}
	if err := scanner.Err(); err != nil {
		t.Errorf("error scanning %s: %v", filePath, err)
	}
}

// matchLongestCommand returns the longest command path from knownCommands
// that prefixes tokens, ignoring flags. It returns "" when nothing matches.
func matchLongestCommand(tokens []string, knownCommands map[string]bool) string {
	var words []string
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "-") {
			break
		}
		words = append(words, tok)
	}

	var best string
	for i := 1; i <= len(words); i++ {
		candidate := strings.Join(words[:i], " ")
		if knownCommands[candidate] {
			best = candidate
		}
	}
	return best
}

func TestMatchLongestCommand(t *testing.T) {
	t.Parallel()

	known := map[string]bool{
		"parse":       true,
		"config show": true,
		"config path": true,
	}

	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"single", []string{"parse", "map.json"}, "parse"},
		{"nested", []string{"config", "show"}, "config show"},
		{"stops at flags", []string{"config", "--config", "x", "path"}, ""},
		{"flag after command", []string{"parse", "-o", "json", "map.json"}, "parse"},
		{"unknown", []string{"bogus"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matchLongestCommand(tt.tokens, known); got != tt.want {
				t.Errorf("matchLongestCommand(%v) = %q, want %q", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestCollectLeafCommands(t *testing.T) {
	t.Parallel()

	commands := collectLeafCommands(NewRootCommand(NewApp(Dependencies{})))
	for _, want := range []string{"parse", "resolve", "deno", "explain", "config show", "config init", "config path", "config set", "config dump"} {
		if !commands[want] {
			t.Errorf("command tree should contain leaf %q", want)
		}
	}
	if commands["config"] {
		t.Error("routing node config should not count as a leaf")
	}
}
