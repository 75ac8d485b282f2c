package kinet

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidArgument reports a malformed network, policy, or parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotBound reports use of an integrator before a successful Bind.
	ErrNotBound = errors.New("integrator not bound to a network")
	// ErrStopped reports a tick delivered to a stopped session.
	ErrStopped = errors.New("session stopped")
)

// Concentrations is a per-compound concentration vector.
type Concentrations []float64

func (c Concentrations) Clone() Concentrations {
	out := make(Concentrations, len(c))
	copy(out, c)
	return out
}

func (c Concentrations) IsValid() bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Side is one side of a reaction. The three slices are positionally
// aligned: Stoich[i] and Orders[i] belong to compound Compounds[i].
type Side struct {
	Compounds []int     // indices into the concentration vector
	Stoich    []float64 // stoichiometric coefficients
	Orders    []float64 // rate-law exponents
}

func (s Side) clone() Side {
	return Side{
		Compounds: append([]int(nil), s.Compounds...),
		Stoich:    append([]float64(nil), s.Stoich...),
		Orders:    append([]float64(nil), s.Orders...),
	}
}

// Reaction is a reversible transformation between two compound sets.
type Reaction struct {
	KForward  float64 // forward rate constant
	KBackward float64 // backward rate constant
	Reactants Side
	Products  Side
}

// Network is a snapshot of a reaction system: compound display labels,
// the current concentration vector, and the reaction table. Producing a
// valid network (name resolution, unit handling) is the provider's job;
// see the config package.
type Network struct {
	Labels         []string
	Concentrations Concentrations
	Reactions      []Reaction
}

func (n *Network) CompoundCount() int { return len(n.Concentrations) }

// Policy selects what happens when a step would drive a concentration
// at or below zero.
type Policy int

const (
	// ClampToZero pins the compound at zero.
	ClampToZero Policy = iota
	// Freeze keeps the previous value.
	Freeze
	// AllowNegative applies the step unmodified.
	AllowNegative
)

func (p Policy) valid() bool {
	return p >= ClampToZero && p <= AllowNegative
}

func (p Policy) String() string {
	switch p {
	case ClampToZero:
		return "clamp"
	case Freeze:
		return "freeze"
	case AllowNegative:
		return "negative"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps the configuration strings to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "clamp":
		return ClampToZero, nil
	case "freeze":
		return Freeze, nil
	case "negative":
		return AllowNegative, nil
	default:
		return 0, fmt.Errorf("%w: policy must be clamp, freeze, or negative, got %q", ErrInvalidArgument, s)
	}
}

// Snapshot is the concentration vector recorded at a simulation time.
// The vector is a copy, detached from the integrator's working state.
type Snapshot struct {
	Time float64
	Conc Concentrations
}

// Series is the ordered result of a run: the label header, recorded
// checkpoints in ascending bracket order, and the terminal snapshot.
// Stopped marks a live run ended by an external stop rather than a
// fixed horizon; serializers write its final time column as "end".
type Series struct {
	Labels      []string
	Checkpoints []Snapshot
	Final       Snapshot
	Stopped     bool
}

// Segment is one compound's trajectory over a single step, emitted to
// observers for charting. Values are copies of integrator state.
type Segment struct {
	Compound int
	T0, T1   float64
	V0, V1   float64
}

// Observer consumes per-step segments. Observers run synchronously on
// the integration loop and must not block.
type Observer interface {
	OnStep(t float64, segs []Segment)
}
