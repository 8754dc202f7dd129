//go:build functional

package main

import (
	"os"
	"os/exec"
	"testing"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	cmd := exec.Command("go", "build", "-o", "ambryfs-test", ".")
	if err := cmd.Run(); err != nil {
		t.Skipf("Skipping functional test - failed to build: %v", err)
	}
	t.Cleanup(func() { os.Remove("ambryfs-test") })
	return "./ambryfs-test"
}

// TestMainHelp tests that -h prints usage and exits cleanly
func TestMainHelp(t *testing.T) {
	bin := buildBinary(t)

	output, err := exec.Command(bin, "-h").CombinedOutput()
	if err != nil {
		t.Errorf("Expected -h to exit cleanly, got %v", err)
	}
	if len(output) == 0 {
		t.Error("Expected usage output")
	}
}

// TestMainMissingArgs tests that main fails without a store endpoint
func TestMainMissingArgs(t *testing.T) {
	bin := buildBinary(t)

	cmd := exec.Command(bin, t.TempDir())
	cmd.Env = []string{}
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Error("Expected error when ambry_base_url is missing")
	}
	t.Logf("Error output (expected): %s", string(output))
}
