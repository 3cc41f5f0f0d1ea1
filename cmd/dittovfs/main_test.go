package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDemo(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)
	assert.Equal(t, "Read Hello World!\n", out)
}

func TestExec(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: ERROR
drives:
  - letter: A
    type: memory
  - letter: B
    type: badger
`)

	out, err := run(t, "--config", configPath, "exec",
		"mkdir B:/docs",
		"touch B:/docs/a.txt",
		"write B:/docs/a.txt hi",
		"cat B:/docs/a.txt",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "hi\n")
}

func TestExec_StopsAtFirstError(t *testing.T) {
	configPath := writeConfig(t, "logging:\n  level: ERROR\n")

	_, err := run(t, "--config", configPath, "exec", "cat A:/missing", "touch A:/never")
	assert.Error(t, err)
}

func TestDrives(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: ERROR
drives:
  - letter: c
    type: afero
`)

	out, err := run(t, "--config", configPath, "drives")
	require.NoError(t, err)
	assert.Contains(t, out, "C:")
	assert.Contains(t, out, "afero")
}

func TestConfigInitAndValidate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "--config", configPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, configPath)

	_, err = run(t, "--config", configPath, "config", "init")
	assert.Error(t, err, "init must refuse to overwrite without --force")

	_, err = run(t, "--config", configPath, "config", "init", "--force")
	require.NoError(t, err)

	out, err = run(t, "--config", configPath, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid: 2 drive(s)")
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DITTOVFS_LOGGING_LEVEL=bogus\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("DITTOVFS_LOGGING_LEVEL") })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--env-file", envPath, "--config", filepath.Join(dir, "none.yaml"), "config", "validate"})

	assert.Error(t, cmd.Execute(), "the dotenv log level must reach validation")
}
