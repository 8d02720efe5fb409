package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMatrixValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, matrix.DefaultDocument(), 0o600))

	out, err := run(t, "matrix", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "valid (version 2024.10-1")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: v1\npanels:\n  Bad Id:\n    sensitivity: extreme\n"), 0o600))
	_, err = run(t, "matrix", "validate", bad)
	assert.ErrorIs(t, err, echo_errors.ErrInvalidMatrix)
}

func TestMatrixShow(t *testing.T) {
	out, err := run(t, "matrix", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 2024.10-1")
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "Sensitivity")
	assert.Contains(t, out, "bancos")
	assert.Contains(t, out, "approvals >= 1")

	raw, err := run(t, "matrix", "show", "--raw")
	require.NoError(t, err)
	assert.Contains(t, raw, "2024.10-1")
	assert.Contains(t, raw, "allowedRoles")
	assert.NotContains(t, raw, "╭")
}

func TestEvaluate_RoleDenied(t *testing.T) {
	out, err := run(t, "evaluate",
		"--actor", "a-9", "--role", "analyst", "--resource", "profit",
		"--mfa", "--device-trusted", "--network", "office",
		"--at", "2024-03-05T10:00:00Z", "--audit", "--exit-code")
	assert.ErrorIs(t, err, echo_errors.ErrRoleDenied)

	var result struct {
		Decision pdp_model.PermissionDecision `json:"decision"`
		Audit    []json.RawMessage            `json:"audit"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Decision.Allowed)
	assert.Contains(t, result.Decision.Kinds, pdp_model.KindRoleDenied)
	assert.Len(t, result.Audit, 1)
}
