package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/eelloooii/json-response-standard/pkg/errors"
	"github.com/eelloooii/json-response-standard/pkg/types"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("JSONRESPONSE_POLICY", "permissive")
	t.Setenv("JSONRESPONSE_LOG_LEVEL", "error")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildCommandDefaults(t *testing.T) {
	out, _, err := execute(t, "", "build")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"status\": 200,\n  \"message\": \"\",\n  \"data\": {}\n}\n", out)
}

func TestBuildCommandWithPayload(t *testing.T) {
	out, _, err := execute(t, "", "build", "--data", `{"user":"John"}`, "--status", "201", "--message", "Created")
	require.NoError(t, err)

	var env types.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, 201, env.Status)
	assert.Equal(t, "Created", env.Message)
	assert.Equal(t, map[string]any{"user": "John"}, env.Data)
}

func TestBuildCommandReadsStdinAndFile(t *testing.T) {
	out, _, err := execute(t, `{"from":"stdin"}`, "build", "--data", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"from": "stdin"`)

	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o600))
	out, _, err = execute(t, "", "build", "--data", "@"+path)
	require.NoError(t, err)
	assert.Contains(t, out, `"from": "file"`)
}

func TestBuildCommandRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code pkgerrors.Code
	}{
		{name: "low status", args: []string{"--status", "99"}, code: pkgerrors.CodeInvalidStatus},
		{name: "high status", args: []string{"--status", "600"}, code: pkgerrors.CodeInvalidStatus},
		{name: "word status", args: []string{"--status", "ok"}, code: pkgerrors.CodeInvalidStatus},
		{name: "fractional status", args: []string{"--status", "200.5"}, code: pkgerrors.CodeInvalidStatus},
		{name: "strict list", args: []string{"--strict", "--data", "[1,2]"}, code: pkgerrors.CodeInvalidData},
		{name: "broken payload", args: []string{"--data", "{nope"}, code: pkgerrors.CodeSerialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"build"}, tt.args...)...)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, pkgerrors.HasCode(err, tt.code), "got %v", err)
			assert.Equal(t, pkgerrors.MetadataFor(tt.code).ExitCode, exitCode(err))
		})
	}
}

func TestBuildCommandHonoursStrictPolicyFromEnv(t *testing.T) {
	stdout := &bytes.Buffer{}
	t.Setenv("JSONRESPONSE_POLICY", "strict")
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"build", "--data", `"text"`})

	err := cmd.Execute()
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidData), "got %v", err)
}

func TestConformanceCommandPasses(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "jsonresponse.prom")
	out, _, err := execute(t, "", "conformance", "--metrics-file", metricsPath, "--parallelism", "2")
	require.NoError(t, err, out)

	assert.Contains(t, out, "[PASS] go/permissive: Default values")
	assert.Contains(t, out, "[PASS] go/strict: Strict normalizes null payload")
	assert.Contains(t, out, "[SUCCESS] All Go tests passed!")

	metricsText, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), `envelope_builds_total{outcome="ok"}`)
	assert.Contains(t, string(metricsText), `envelope_builds_total{outcome="INVALID_STATUS_CODE"}`)
}

func TestConformanceCommandFailsOnBrokenCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	doc := "cases:\n  - name: wrong expectation\n    status: 200\n    expect: {status: 201}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, _, err := execute(t, "", "conformance", "--cases", path, "--policy", "strict")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errConformanceFailed))
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "[FAIL] go/strict: wrong expectation")
	assert.NotContains(t, out, "go/permissive")
	assert.Contains(t, out, "[WARNING] 1 tests failed.")
}

func TestConformanceCommandRejectsUnknownPolicy(t *testing.T) {
	_, _, err := execute(t, "", "conformance", "--policy", "lenient")
	assert.Error(t, err)
}

func TestParseScalar(t *testing.T) {
	assert.Equal(t, json.Number("200"), parseScalar("200"))
	assert.Equal(t, "ok", parseScalar("ok"))
	assert.Equal(t, "200 300", parseScalar("200 300"))
	assert.Equal(t, true, parseScalar("true"))
}
