package config

import (
	"fmt"
	"strings"
)

// CacheKeyStruct builds every Redis key and channel name used by the service.
type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the key holding the active token id for a role/subject pair.
func (r *CacheKeyStruct) SessionKey(role, subject string) string {
	return fmt.Sprintf("session:%s:%s", role, subject)
}

// RateLimitKey returns the fixed-window counter key for a client on a route group.
func (r *CacheKeyStruct) RateLimitKey(group, clientIP string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", group, clientIP, window)
}

// RequestEventsChannel returns the Redis PubSub channel for an institution's request events.
// An empty college maps to the global channel.
func (r *CacheKeyStruct) RequestEventsChannel(college string) string {
	if college == "" {
		return "requests:all:events"
	}
	return fmt.Sprintf("requests:%s:events", strings.ToLower(strings.ReplaceAll(college, " ", "_")))
}

// ReconcileLockKey guards the periodic reconciliation so only one replica runs a pass.
func (r *CacheKeyStruct) ReconcileLockKey() string {
	return "lock:reconcile"
}

var CacheKey = NewCacheKeyStruct()
