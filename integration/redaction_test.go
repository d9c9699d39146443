package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverFailureBody = `{"resourceType":"Patient","id":"p1",` +
	`"identifier":[{"system":"http://fhir.de/sid/gkv/kvid-10","value":"X110407071"}],` +
	`"name":[{"family":"Mustermann","given":["Max"]}],"birthDate":"1980-01-01",` +
	`"text":{"div":"ticket SECRET-ABC12345"}}`

func TestRedaction_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	// 1. Build the binary
	rootDir := findProjectRoot(t)
	binPath := filepath.Join(t.TempDir(), "rxforge")

	build := exec.Command("go", "build", "-o", binPath, "./cmd/rxforge")
	build.Dir = rootDir
	out, err := build.CombinedOutput()
	require.NoError(t, err, "Failed to build rxforge: %s", out)

	// 2. Create a temporary home directory with redaction rules and a dump directory
	tempHome := t.TempDir()
	configContent := `
diagnostics:
  dir: dumps
redaction:
  disable_gitleaks: true
  patterns:
    - "SECRET-[A-Z0-9]{8}"
  hash_mode:
    enabled: false
`
	err = os.WriteFile(filepath.Join(tempHome, ".rxforge.yaml"), []byte(configContent), 0o600)
	require.NoError(t, err)

	bodyPath := filepath.Join(tempHome, "response.json")
	require.NoError(t, os.WriteFile(bodyPath, []byte(serverFailureBody), 0o600))

	// 3. Decode a 5xx response fetched with a credential.
	// The exit status depends on validation and is not asserted.
	decode := exec.Command(binPath, "decode", bodyPath,
		"--verbose",
		"--status", "503",
		"--credential", "smcb-credential-42",
		"--header", "Authorization: Bearer smcb-credential-42")
	decode.Env = append(os.Environ(), "HOME="+tempHome)
	output, _ := decode.CombinedOutput()
	assert.NotContains(t, string(output), "smcb-credential-42")

	// 4. Verify the dump
	dumpDir := filepath.Join(tempHome, "dumps")
	entries, err := os.ReadDir(dumpDir)
	require.NoError(t, err, "no dump written: %s", output)
	require.Len(t, entries, 1)

	dump, err := os.ReadFile(filepath.Join(dumpDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(dump), "[REDACTED]")
	assert.NotContains(t, string(dump), "smcb-credential-42")
	assert.NotContains(t, string(dump), "Mustermann")
	assert.NotContains(t, string(dump), "X110407071")
	assert.NotContains(t, string(dump), "SECRET-ABC12345")
}

func findProjectRoot(t *testing.T) string {
	wd, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			t.Fatal("could not find project root")
		}
		wd = parent
	}
}
