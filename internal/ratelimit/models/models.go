package models

import (
	"errors"
	"time"
)

// PolicyName identifies a rate-limit policy in logs and metrics.
type PolicyName string

const (
	// PolicyCreate bounds poll creation per origin hash.
	PolicyCreate PolicyName = "create"
	// PolicyVote bounds vote attempts per poll per origin hash.
	PolicyVote PolicyName = "vote"
)

// Policy is a fixed-window limit: at most Max attempts per Window, the window
// starting at the first attempt rather than on a wall-clock boundary.
type Policy struct {
	Name   PolicyName
	Max    int
	Window time.Duration
}

// Default policies.
var (
	DefaultCreatePolicy = Policy{Name: PolicyCreate, Max: 8, Window: time.Minute}
	DefaultVotePolicy   = Policy{Name: PolicyVote, Max: 20, Window: time.Minute}
)

// NewPolicy validates and builds a policy.
func NewPolicy(name PolicyName, max int, window time.Duration) (Policy, error) {
	if name == "" {
		return Policy{}, errors.New("policy name cannot be empty")
	}
	if max <= 0 {
		return Policy{}, errors.New("policy max must be positive")
	}
	if window < time.Second {
		return Policy{}, errors.New("policy window must be at least one second")
	}
	return Policy{Name: name, Max: max, Window: window}, nil
}

// WindowSeconds is the window length as whole seconds (the store's EXPIRE unit).
func (p Policy) WindowSeconds() int64 {
	return int64(p.Window / time.Second)
}

// Exceeded reports whether a post-increment count is over the limit.
func (p Policy) Exceeded(count int64) bool {
	return count > int64(p.Max)
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed bool
	Count   int64
	Limit   int
}
