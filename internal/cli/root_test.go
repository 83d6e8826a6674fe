package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfkr-ae/raseed/domain"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "raseed", cmd.Use)
	assert.Contains(t, cmd.Long, "receipts")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "create", "list", "show", "export", "reset", "config"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config-dir")
	require.NotNil(t, configFlag)
	assert.Equal(t, DefaultConfigDir(), configFlag.DefValue)
}

// run executes the CLI against a config dir and returns stdout and stderr.
func run(t *testing.T, configDir string, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func createJSON(t *testing.T, configDir string) *domain.Receipt {
	t.Helper()
	out, _, err := run(t, configDir, "--format", "json", "create",
		"--domain", "name=example.com,date=2024-01-15,notes=renewed, early",
		"--twitter", "@acme")
	require.NoError(t, err)

	var result CreateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Receipt)
	return result.Receipt
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "--format", "xml", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCreate(t *testing.T) {
	t.Run("should store a receipt", func(t *testing.T) {
		dir := t.TempDir()

		receipt := createJSON(t, dir)

		assert.True(t, strings.HasPrefix(receipt.ReceiptNumber, "REC"))
		require.Len(t, receipt.Domains, 1)
		assert.Equal(t, "example.com", receipt.Domains[0].Name)
		assert.Equal(t, "renewed, early", receipt.Domains[0].Notes)
		assert.Equal(t, "acme", receipt.TwitterHandle)
		assert.FileExists(t, filepath.Join(dir, "raseed.db"))
	})

	t.Run("should print a summary in text mode", func(t *testing.T) {
		out, _, err := run(t, t.TempDir(), "create", "--domain", "name=example.com,date=2024-01-15")
		require.NoError(t, err)
		assert.Contains(t, out, "Created receipt REC")
	})

	t.Run("should report validation errors with exit code 1", func(t *testing.T) {
		_, stderr, err := run(t, t.TempDir(), "create", "--domain", "name=,date=")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, stderr, "domains.0.name: Domain name is required")
		assert.Contains(t, stderr, "domains.0.registrationDate: Registration date is required")
	})

	t.Run("should require at least one domain", func(t *testing.T) {
		out, _, err := run(t, t.TempDir(), "--format", "json", "create")
		require.Error(t, err)

		var result CreateResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		require.Len(t, result.Errors, 1)
		assert.Equal(t, domain.KindMissingDomains, result.Errors[0].Kind)
	})

	t.Run("should reject unknown domain keys", func(t *testing.T) {
		_, _, err := run(t, t.TempDir(), "create", "--domain", "host=example.com")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestParseDomainFlag(t *testing.T) {
	got, err := parseDomainFlag("name=example.com,date=2024-01-15,notes=a, b=c")
	require.NoError(t, err)
	assert.Equal(t, domain.RawDomainEntry{Name: "example.com", RegistrationDate: "2024-01-15", Notes: "a, b=c"}, got)

	_, err = parseDomainFlag("example.com")
	assert.Error(t, err)
}

func TestListAndShow(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No receipts stored.")

	receipt := createJSON(t, dir)

	out, _, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, receipt.ID.String())
	assert.Contains(t, out, receipt.ReceiptNumber)
	assert.Contains(t, out, "example.com")

	out, _, err = run(t, dir, "show", receipt.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "DOMAIN RECEIPT")
	assert.Contains(t, out, "ORDER #"+receipt.ReceiptNumber)
	assert.Contains(t, out, "@acme")

	_, _, err = run(t, dir, "show", "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	receipt := createJSON(t, dir)

	t.Run("should write the image to the requested file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.svg")

		_, stderr, err := run(t, dir, "export", receipt.ID.String(), "--type", "svg", "-o", target)
		require.NoError(t, err)
		assert.Contains(t, stderr, "image/svg+xml")

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "DOMAIN RECEIPT")
	})

	t.Run("should write png to stdout", func(t *testing.T) {
		out, _, err := run(t, dir, "export", receipt.ID.String(), "-o", "-")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "\x89PNG"))
	})

	t.Run("should reject unknown image types", func(t *testing.T) {
		_, _, err := run(t, dir, "export", receipt.ID.String(), "--type", "gif")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	createJSON(t, dir)

	_, _, err := run(t, dir, "reset")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, _, err := run(t, dir, "reset", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Receipts deleted.")

	out, _, err = run(t, dir, "--format", "json", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestConfig(t *testing.T) {
	t.Run("should persist a setting across runs", func(t *testing.T) {
		dir := t.TempDir()

		_, stderr, err := run(t, dir, "config", "set", "port", "9090")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Set port = 9090")

		out, _, err := run(t, dir, "config", "get", "port")
		require.NoError(t, err)
		assert.Equal(t, "9090\n", out)

		raw, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "9090")
	})

	t.Run("should list every setting", func(t *testing.T) {
		out, _, err := run(t, t.TempDir(), "config", "get")
		require.NoError(t, err)
		assert.Contains(t, out, "storage.driver = sqlite")
		assert.Contains(t, out, "export.scale = 2")
	})

	t.Run("should reject unknown keys with exit code 1", func(t *testing.T) {
		_, _, err := run(t, t.TempDir(), "config", "set", "colour", "blue")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})

	t.Run("should reject invalid values and keep the old one", func(t *testing.T) {
		dir := t.TempDir()

		_, _, err := run(t, dir, "config", "set", "export.scale", "0")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		out, _, err := run(t, dir, "config", "get", "export.scale")
		require.NoError(t, err)
		assert.Equal(t, "2\n", out)
	})
}
