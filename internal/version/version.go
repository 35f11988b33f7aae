// Package version provides build version information and runtime metadata.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	// git runs a git subcommand and returns its trimmed stdout.
	git = runGit
)

func ensureInitialized() {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
		if Commit == "" {
			Commit = describe(ctx, "unknown", "--always", "--dirty")
		}
		if Version == "" {
			Version = strings.TrimPrefix(describe(ctx, "dev", "--tags", "--abbrev=0"), "v")
		}
	})
}

func runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// describe runs git describe with args, returning fallback on failure or
// empty output.
func describe(ctx context.Context, fallback string, args ...string) string {
	out, err := git(ctx, append([]string{"describe"}, args...)...)
	if err != nil || out == "" {
		return fallback
	}
	return out
}

// GetVersion returns the release version, or "dev".
func GetVersion() string {
	ensureInitialized()
	return Version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	ensureInitialized()
	return Commit
}

// GetDate returns the build date.
func GetDate() string {
	ensureInitialized()
	return Date
}

// Info returns a one-line summary for the version command.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("sleep-insight-tui %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
