package stealth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// DelayProfile names a jitter range applied before each outbound call.
type DelayProfile string

const (
	ProfileOff        DelayProfile = "off"
	ProfileAggressive DelayProfile = "aggressive"
	ProfileNormal     DelayProfile = "normal"
	ProfileCautious   DelayProfile = "cautious"
)

// ParseDelayProfile accepts the configured profile name; empty means off.
func ParseDelayProfile(s string) (DelayProfile, error) {
	switch p := DelayProfile(s); p {
	case "", ProfileOff:
		return ProfileOff, nil
	case ProfileAggressive, ProfileNormal, ProfileCautious:
		return p, nil
	default:
		return "", fmt.Errorf("unknown delay profile %q", s)
	}
}

// HumanDelay adds randomized jitter before a request. A search fans out to
// every platform at once, so the ranges are far shorter than a crawler's.
type HumanDelay struct {
	Min time.Duration
	Max time.Duration
}

// NewHumanDelay returns nil for ProfileOff; a nil *HumanDelay never waits.
func NewHumanDelay(profile DelayProfile) *HumanDelay {
	switch profile {
	case ProfileAggressive:
		return &HumanDelay{Min: 50 * time.Millisecond, Max: 200 * time.Millisecond}
	case ProfileNormal:
		return &HumanDelay{Min: 150 * time.Millisecond, Max: 600 * time.Millisecond}
	case ProfileCautious:
		return &HumanDelay{Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond}
	default:
		return nil
	}
}

// Wait sleeps for a random duration in [Min, Max) or until ctx is done.
func (h *HumanDelay) Wait(ctx context.Context) error {
	if h == nil {
		return nil
	}
	t := time.NewTimer(h.next())
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HumanDelay) next() time.Duration {
	if h.Min >= h.Max {
		return h.Min
	}
	return h.Min + time.Duration(rand.Int64N(int64(h.Max-h.Min)))
}
