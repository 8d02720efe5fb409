package model

import (
	"time"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
)

// CacheKey identifies a cached decision. ActorID is always part of the key
// so entries never collide across actors. SessionID and Context keep
// sessions of one actor, and requests carrying different trust signals or
// thresholds, apart.
type CacheKey struct {
	ActorID    string
	ActionType model.ActionType
	ResourceID string
	SessionID  string
	Context    string
}

type CacheEntry struct {
	Decision  *PermissionDecision
	StoredAt  time.Time
	ExpiresAt time.Time
}

// CacheStats is a snapshot of the decision cache counters.
type CacheStats struct {
	Entries       int    `json:"entries"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
	Evictions     uint64 `json:"evictions"`
}
