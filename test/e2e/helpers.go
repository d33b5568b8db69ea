//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildBinary compiles the CLI into dir and returns its path.
func buildBinary(dir string) (string, error) {
	binPath := filepath.Join(dir, "platform-cli")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/platform-cli")
	cmd.Dir = "../../"
	cmd.Env = os.Environ()

	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %s", err, out)
	}
	return binPath, nil
}

// CLIResult is the outcome of one CLI invocation.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunCLI runs the binary against LocalStack with a fixed owner. stdin feeds prompts.
func RunCLI(t *testing.T, stdin string, args ...string) CLIResult {
	t.Helper()

	full := append([]string{"--endpoint-url", endpointURL, "--owner", "e2e"}, args...)
	cmd := exec.Command(binaryPath, full...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "PLATFORM_CLI_SKIP_TELEMETRY=true")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := CLIResult{}
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case err != nil:
		t.Fatalf("failed to run %v: %v", args, err)
	}
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	t.Logf("platform-cli %s -> %d\n%s", strings.Join(args, " "), res.ExitCode, res.Stdout)
	return res
}
