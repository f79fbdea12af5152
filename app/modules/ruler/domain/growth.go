// Package rulerdomain holds the rules of the size game: how a play changes a
// size, when a player may play again and how players are ranked.
package rulerdomain

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultCooldown = 24 * time.Hour
	DefaultMinDelta = -5
	DefaultMaxDelta = 10
	DefaultTopLimit = 10
)

// ErrEmptyDeltaRange is returned when a range cannot produce a non-zero delta.
var ErrEmptyDeltaRange = errors.New("delta range has no non-zero value")

// GrowthPolicy is the tuning of a play.
type GrowthPolicy struct {
	Cooldown time.Duration
	MinDelta int64
	MaxDelta int64
}

// DefaultGrowthPolicy returns a 24h cooldown with deltas in [-5, 10].
func DefaultGrowthPolicy() GrowthPolicy {
	return GrowthPolicy{
		Cooldown: DefaultCooldown,
		MinDelta: DefaultMinDelta,
		MaxDelta: DefaultMaxDelta,
	}
}

// Validate reports whether DrawDelta can ever succeed with this policy.
func (p GrowthPolicy) Validate() error {
	if p.MinDelta > p.MaxDelta || (p.MinDelta == 0 && p.MaxDelta == 0) {
		return fmt.Errorf("%w: [%d, %d]", ErrEmptyDeltaRange, p.MinDelta, p.MaxDelta)
	}
	if p.Cooldown < 0 {
		return fmt.Errorf("negative cooldown %s", p.Cooldown)
	}
	return nil
}

// Rand is the source of randomness for draws. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Int64N(n int64) int64
}

// DrawDelta draws uniformly from [min, max], drawing again while the result
// is zero.
func DrawDelta(rng Rand, min, max int64) (int64, error) {
	if min > max || (min == 0 && max == 0) {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrEmptyDeltaRange, min, max)
	}
	span := max - min + 1
	for {
		if d := min + rng.Int64N(span); d != 0 {
			return d, nil
		}
	}
}

// ApplyDelta adds delta to size. Sizes never go below zero.
func ApplyDelta(size, delta int64) int64 {
	return max(0, size+delta)
}

// Outcome is what a play command did.
type Outcome string

const (
	OutcomeGrew          Outcome = "grew"
	OutcomeShrank        Outcome = "shrank"
	OutcomeAlreadyPlayed Outcome = "already_played"
)

// OutcomeOf classifies a drawn delta.
func OutcomeOf(delta int64) Outcome {
	if delta > 0 {
		return OutcomeGrew
	}
	return OutcomeShrank
}
