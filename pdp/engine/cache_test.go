package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

func key(actor, resource string) pdp_model.CacheKey {
	return pdp_model.CacheKey{ActorID: actor, ActionType: model.ActionView, ResourceID: resource}
}

func TestDecisionCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c := NewDecisionCache(30*time.Second, 0, func() time.Time { return now })

	c.Set(key("a", "bancos"), &pdp_model.PermissionDecision{Allowed: true})
	got, ok := c.Get(key("a", "bancos"))
	require.True(t, ok)
	assert.True(t, got.Allowed)

	now = now.Add(30 * time.Second)
	_, ok = c.Get(key("a", "bancos"))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestDecisionCache_StoresCopies(t *testing.T) {
	c := NewDecisionCache(time.Minute, 0, nil)
	d := &pdp_model.PermissionDecision{
		Allowed:             true,
		PermissionsChecked:  []string{"bancos.view"},
		ConditionsEvaluated: []model.ConditionType{},
	}
	c.Set(key("a", "bancos"), d)
	d.PermissionsChecked[0] = "tampered"

	got, ok := c.Get(key("a", "bancos"))
	require.True(t, ok)
	assert.Equal(t, []string{"bancos.view"}, got.PermissionsChecked)
	assert.NotNil(t, got.ConditionsEvaluated)

	got.Allowed = false
	again, _ := c.Get(key("a", "bancos"))
	assert.True(t, again.Allowed)
}

func TestDecisionCache_InvalidateActor(t *testing.T) {
	c := NewDecisionCache(time.Minute, 0, nil)
	c.Set(key("a", "bancos"), &pdp_model.PermissionDecision{})
	c.Set(key("a", "ventas"), &pdp_model.PermissionDecision{})
	c.Set(key("b", "bancos"), &pdp_model.PermissionDecision{})

	assert.Equal(t, 2, c.InvalidateActor("a"))
	assert.Equal(t, 0, c.InvalidateActor("a"))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(key("b", "bancos"))
	assert.True(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestDecisionCache_EvictsOldestWhenFull(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c := NewDecisionCache(time.Hour, 2, func() time.Time { return now })

	c.Set(key("a", "bancos"), &pdp_model.PermissionDecision{})
	now = now.Add(time.Second)
	c.Set(key("b", "bancos"), &pdp_model.PermissionDecision{})
	now = now.Add(time.Second)
	c.Set(key("c", "bancos"), &pdp_model.PermissionDecision{})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(key("a", "bancos"))
	assert.False(t, ok)
	_, ok = c.Get(key("c", "bancos"))
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestDecisionCache_SetIfCurrent(t *testing.T) {
	c := NewDecisionCache(time.Minute, 0, nil)

	gen := c.Generation("a")
	assert.True(t, c.SetIfCurrent(key("a", "bancos"), &pdp_model.PermissionDecision{}, gen))

	stale := c.Generation("a")
	otherGen := c.Generation("b")
	c.InvalidateActor("a")
	assert.False(t, c.SetIfCurrent(key("a", "bancos"), &pdp_model.PermissionDecision{}, stale))
	assert.Equal(t, 0, c.Len())

	// other actors are unaffected until a purge
	assert.True(t, c.SetIfCurrent(key("b", "bancos"), &pdp_model.PermissionDecision{}, otherGen))
	c.Purge()
	assert.False(t, c.SetIfCurrent(key("b", "ventas"), &pdp_model.PermissionDecision{}, otherGen))
	assert.True(t, c.SetIfCurrent(key("a", "bancos"), &pdp_model.PermissionDecision{}, c.Generation("a")))
	assert.Equal(t, 1, c.Len())
}

func TestDecisionCache_KeySeparatesSessions(t *testing.T) {
	c := NewDecisionCache(time.Minute, 0, nil)
	first := key("a", "bancos")
	first.SessionID = "s-1"
	second := first
	second.SessionID = "s-2"

	c.Set(first, &pdp_model.PermissionDecision{Allowed: true})
	_, ok := c.Get(second)
	assert.False(t, ok)
	assert.Equal(t, 1, c.InvalidateActor("a"))
}
