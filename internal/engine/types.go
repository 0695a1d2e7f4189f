// Package engine owns live simulation state: the entity lifecycle
// container, the fixed-step clock that is the only goroutine allowed to
// mutate that state, and the interval timer every timed behavior uses.
package engine

import (
	"fmt"
	"time"
)

// TargetFrameRate is the number of simulation steps per simulated second.
const TargetFrameRate = 30

// TickDuration is the simulated time covered by one step.
const TickDuration = time.Second / TargetFrameRate

// EntityID identifies an entity for as long as anything may reference it.
// IDs are assigned on Add and never reused within an Engine.
type EntityID uint64

// EntityType is the closed set of entity categories used for indexing.
type EntityType uint8

const (
	TypeTower EntityType = iota
	TypeEnemy
	TypeShot
	TypePlateau
	TypeEffect
	TypeDecoration

	typeCount
)

func (t EntityType) String() string {
	switch t {
	case TypeTower:
		return "tower"
	case TypeEnemy:
		return "enemy"
	case TypeShot:
		return "shot"
	case TypePlateau:
		return "plateau"
	case TypeEffect:
		return "effect"
	case TypeDecoration:
		return "decoration"
	default:
		return fmt.Sprintf("EntityType(%d)", uint8(t))
	}
}

// State is the lifecycle state of an entity.
type State uint8

const (
	StatePending State = iota // constructed, not yet added
	StateLive                 // tick- and query-eligible
	StateRemoved              // terminal
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLive:
		return "live"
	default:
		return "removed"
	}
}
