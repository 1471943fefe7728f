// Package cache provides the short-lived result cache used by the
// leaderboard. Redis backs it in production; Nop is used when no Redis
// address is configured.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Version returns the current generation of a namespace.
	Version(ctx context.Context, namespace string) int64
	// Bump advances a namespace generation, orphaning its old keys.
	Bump(ctx context.Context, namespace string)
	Close() error
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}
func (Nop) Version(context.Context, string) int64              { return 0 }
func (Nop) Bump(context.Context, string)                       {}
func (Nop) Close() error                                       { return nil }
