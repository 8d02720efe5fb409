package matrix_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
)

const minimalMatrix = `
version: test-1
timeWindows:
  always: {}
panels:
  ledger:
    name: Ledger
    sensitivity: medium
    category: financial
    actions:
      view:
        allowedRoles: [analyst]
        rateLimit:
          maxRequests: 3
          window: 30s
`

func TestLoadDefault(t *testing.T) {
	reg, err := matrix.LoadDefault()
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Version())

	var ids []string
	for _, p := range reg.Panels() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"almacen", "bancos", "clientes", "profit", "reportes", "seguridad", "ventas"}, ids)

	cfg, err := reg.GetActionConfig("bancos", model.ActionView)
	require.NoError(t, err)
	assert.Contains(t, cfg.AllowedRoles, model.RoleBankProfitManager)
	require.NotNil(t, cfg.Fields)
	assert.Contains(t, cfg.Fields.Masked, "account_number")

	profitView, err := reg.GetActionConfig("profit", model.ActionView)
	require.NoError(t, err)
	assert.Contains(t, profitView.DeniedRoles, model.RoleAnalyst)

	manage, err := reg.GetActionConfig("profit", model.ActionManage)
	require.NoError(t, err)
	var types []model.ConditionType
	for _, c := range manage.Conditions {
		types = append(types, c.Type)
	}
	assert.Contains(t, types, model.ConditionApproval)

	admin, err := reg.GetActionConfig("seguridad", model.ActionAdmin)
	require.NoError(t, err)
	require.NotNil(t, admin.RateLimit)
	assert.Equal(t, 10*time.Minute, admin.RateLimit.Window)
}

func TestGetActionConfig_NeverImplicitAllow(t *testing.T) {
	reg, err := matrix.LoadDefault()
	require.NoError(t, err)

	_, err = reg.GetActionConfig("nomina", model.ActionView)
	assert.ErrorIs(t, err, echo_errors.ErrResourceNotRecognized)

	_, err = reg.GetActionConfig("reportes", model.ActionDelete)
	assert.ErrorIs(t, err, echo_errors.ErrActionNotSupported)
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	reg, err := matrix.LoadDefault()
	require.NoError(t, err)

	cfg, err := reg.GetActionConfig("bancos", model.ActionView)
	require.NoError(t, err)
	cfg.AllowedRoles[0] = "intruder"
	cfg.Fields.Masked = nil

	again, err := reg.GetActionConfig("bancos", model.ActionView)
	require.NoError(t, err)
	assert.NotContains(t, again.AllowedRoles, "intruder")
	assert.NotEmpty(t, again.Fields.Masked)
}

func TestLoad_Minimal(t *testing.T) {
	reg, err := matrix.Load([]byte(minimalMatrix))
	require.NoError(t, err)
	assert.Equal(t, "test-1", reg.Version())

	p, ok := reg.Panel("ledger")
	require.True(t, ok)
	assert.Equal(t, "ledger", p.ID)
	assert.Equal(t, 30*time.Second, p.Actions[model.ActionView].RateLimit.Window)
}

func TestLoad_RejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown key": `
version: v
panels:
  ledger:
    name: L
    sensitivity: low
    category: financial
    colour: red
    actions:
      view: {allowedRoles: [a]}
`,
		"undefined window": `
version: v
panels:
  ledger:
    name: L
    sensitivity: low
    category: financial
    actions:
      view:
        allowedRoles: [a]
        conditions: [{type: time, window: lunch}]
`,
		"bad threshold": `
version: v
panels:
  ledger:
    name: L
    sensitivity: low
    category: financial
    actions:
      view:
        allowedRoles: [a]
        riskThreshold: 1.5
`,
		"bad action": `
version: v
panels:
  ledger:
    name: L
    sensitivity: low
    category: financial
    actions:
      teleport: {allowedRoles: [a]}
`,
		"bad sensitivity": `
version: v
panels:
  ledger:
    name: L
    sensitivity: extreme
    category: financial
    actions:
      view: {allowedRoles: [a]}
`,
		"unknown condition": `
version: v
panels:
  ledger:
    name: L
    sensitivity: low
    category: financial
    actions:
      view:
        allowedRoles: [a]
        conditions: [{type: horoscope}]
`,
		"missing version": `
panels:
  ledger:
    name: L
    sensitivity: low
    category: financial
    actions:
      view: {allowedRoles: [a]}
`,
		"bad id": `
version: v
panels:
  Ledger!:
    name: L
    sensitivity: low
    category: financial
    actions:
      view: {allowedRoles: [a]}
`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			reg, err := matrix.Load([]byte(doc))
			assert.Nil(t, reg)
			assert.ErrorIs(t, err, echo_errors.ErrInvalidMatrix)
		})
	}
}

func TestManager_SwapAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalMatrix), 0o600))

	m, err := matrix.NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", m.Current().Version())

	def, err := matrix.LoadDefault()
	require.NoError(t, err)
	old := m.Swap(def)
	assert.Equal(t, "test-1", old.Version())
	assert.Equal(t, def.Version(), m.Current().Version())

	require.NoError(t, os.WriteFile(path, []byte("version: [broken"), 0o600))
	_, err = m.Reload()
	assert.Error(t, err)
	assert.Equal(t, def.Version(), m.Current().Version(), "failed reload keeps the current registry")

	require.NoError(t, os.WriteFile(path, []byte(minimalMatrix), 0o600))
	reg, err := m.Reload()
	require.NoError(t, err)
	assert.Same(t, reg, m.Current())
}

func TestApplyFieldMask(t *testing.T) {
	record := map[string]any{
		"name":           "Banco Norte",
		"account_number": "ES12 3456",
		"internal_notes": "do not show",
		"balance":        1200.5,
	}

	out := matrix.ApplyFieldMask(record, &model.FieldVisibility{
		Denied: []string{"internal_notes"},
		Masked: []string{"account_number"},
	})
	assert.Equal(t, map[string]any{
		"name":           "Banco Norte",
		"account_number": matrix.MaskValue,
		"balance":        1200.5,
	}, out)
	assert.Equal(t, "ES12 3456", record["account_number"], "input is not modified")

	onlyName := matrix.ApplyFieldMask(record, &model.FieldVisibility{Allowed: []string{"name"}})
	assert.Equal(t, map[string]any{"name": "Banco Norte"}, onlyName)

	assert.Equal(t, record, matrix.ApplyFieldMask(record, nil))
}

func TestValidResourceID(t *testing.T) {
	assert.True(t, matrix.ValidResourceID("bancos"))
	assert.True(t, matrix.ValidResourceID("cash_flow-2"))
	assert.False(t, matrix.ValidResourceID(""))
	assert.False(t, matrix.ValidResourceID("../etc"))
	assert.False(t, matrix.ValidResourceID("Bancos"))
}
