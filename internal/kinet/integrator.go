package kinet

import (
	"fmt"
	"math"
)

// Integrator advances a reaction network's concentrations with explicit
// Euler steps of fixed size. It owns a private copy of the concentration
// vector from Bind onward; callers only ever see snapshots.
type Integrator struct {
	dt        float64
	bound     bool
	labels    []string
	conc      Concentrations
	reactions []Reaction
	observers []Observer
}

// New creates an integrator with the given step size.
func New(dt float64) (*Integrator, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidArgument, dt)
	}
	return &Integrator{dt: dt}, nil
}

func (g *Integrator) Dt() float64 { return g.dt }

func (g *Integrator) Bound() bool { return g.bound }

// Labels returns the compound display labels cached at bind time.
func (g *Integrator) Labels() []string {
	return append([]string(nil), g.labels...)
}

// Concentrations returns a snapshot of the working vector.
func (g *Integrator) Concentrations() Concentrations {
	return g.conc.Clone()
}

// AddObserver registers a per-step segment consumer.
func (g *Integrator) AddObserver(o Observer) {
	g.observers = append(g.observers, o)
}

// Bind caches the network's reaction tables and copies its current
// concentrations into the integrator's working vector. Rebinding is
// allowed and replaces all cached state. The network is not read again
// during a run.
func (g *Integrator) Bind(net *Network) error {
	if err := validate(net); err != nil {
		return err
	}
	g.labels = append([]string(nil), net.Labels...)
	g.conc = net.Concentrations.Clone()
	g.reactions = make([]Reaction, len(net.Reactions))
	for i, rxn := range net.Reactions {
		g.reactions[i] = Reaction{
			KForward:  rxn.KForward,
			KBackward: rxn.KBackward,
			Reactants: rxn.Reactants.clone(),
			Products:  rxn.Products.clone(),
		}
	}
	g.bound = true
	return nil
}

func validate(net *Network) error {
	if net == nil {
		return fmt.Errorf("%w: nil network", ErrInvalidArgument)
	}
	n := len(net.Concentrations)
	if len(net.Labels) != n {
		return fmt.Errorf("%w: %d labels for %d compounds", ErrInvalidArgument, len(net.Labels), n)
	}
	for i, rxn := range net.Reactions {
		if rxn.KForward < 0 || rxn.KBackward < 0 {
			return fmt.Errorf("%w: reaction %d has a negative rate constant", ErrInvalidArgument, i)
		}
		for _, side := range []Side{rxn.Reactants, rxn.Products} {
			if len(side.Stoich) != len(side.Compounds) || len(side.Orders) != len(side.Compounds) {
				return fmt.Errorf("%w: reaction %d has misaligned side tables", ErrInvalidArgument, i)
			}
			for _, c := range side.Compounds {
				if c < 0 || c >= n {
					return fmt.Errorf("%w: reaction %d references compound %d of %d", ErrInvalidArgument, i, c, n)
				}
			}
		}
	}
	return nil
}

// Delta computes the net concentration change for one step across all
// reactions simultaneously. The result is already scaled by dt.
func (g *Integrator) Delta() (Concentrations, error) {
	if !g.bound {
		return nil, ErrNotBound
	}
	return g.delta(), nil
}

func (g *Integrator) delta() Concentrations {
	delta := make(Concentrations, len(g.conc))
	for _, rxn := range g.reactions {
		fwd := g.extent(rxn.KForward, rxn.Reactants)
		back := g.extent(rxn.KBackward, rxn.Products)
		for i, c := range rxn.Reactants.Compounds {
			delta[c] += (back - fwd) * rxn.Reactants.Stoich[i]
		}
		for i, c := range rxn.Products.Compounds {
			delta[c] += (fwd - back) * rxn.Products.Stoich[i]
		}
	}
	return delta
}

// extent computes dt * k * Π conc[i]^order[i] over one reaction side.
// A zero base with a negative order would be 0^negative; the whole
// extent collapses to zero instead, keeping rate laws finite at the
// boundary of the feasible region.
func (g *Integrator) extent(k float64, side Side) float64 {
	ext := g.dt * k
	for i, c := range side.Compounds {
		base := g.conc[c]
		if base == 0 && side.Orders[i] < 0 {
			return 0
		}
		ext *= math.Pow(base, side.Orders[i])
	}
	return ext
}

// apply adds delta to the working vector, routing each compound that
// would land at or below zero through the policy.
func (g *Integrator) apply(delta Concentrations, policy Policy) {
	for j, d := range delta {
		c := g.conc[j] + d
		switch {
		case c > 0:
			g.conc[j] = c
		case policy == ClampToZero:
			g.conc[j] = 0
		case policy == AllowNegative:
			g.conc[j] = c
		}
		// Freeze: keep the previous value
	}
}

// advance performs one tick at time t: step the vector, record any
// checkpoint whose value falls in [t, t+dt) into series, and hand
// observers the per-compound segments for this step.
func (g *Integrator) advance(t float64, checkpoints []float64, policy Policy, series *Series) {
	var prev Concentrations
	if len(g.observers) > 0 {
		prev = g.conc.Clone()
	}
	g.apply(g.delta(), policy)
	for _, c := range checkpoints {
		if t <= c && c < t+g.dt {
			series.Checkpoints = append(series.Checkpoints, Snapshot{Time: c, Conc: g.conc.Clone()})
		}
	}
	if len(g.observers) > 0 {
		segs := make([]Segment, len(g.conc))
		for j := range g.conc {
			segs[j] = Segment{Compound: j, T0: t - g.dt, T1: t, V0: prev[j], V1: g.conc[j]}
		}
		for _, o := range g.observers {
			o.OnStep(t, segs)
		}
	}
}

// Run integrates for the given duration, recording the requested
// checkpoint times. Checkpoints outside [0, duration) are never
// recorded; the final snapshot at t = duration always is.
func (g *Integrator) Run(duration float64, checkpoints []float64, policy Policy) (*Series, error) {
	if !g.bound {
		return nil, ErrNotBound
	}
	if !policy.valid() {
		return nil, fmt.Errorf("%w: unknown policy %d", ErrInvalidArgument, int(policy))
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: duration must be non-negative, got %g", ErrInvalidArgument, duration)
	}

	series := &Series{Labels: g.Labels()}
	steps := int(duration/g.dt) + 1
	t := 0.0
	for i := 0; i < steps; i++ {
		g.advance(t, checkpoints, policy, series)
		t += g.dt
	}
	series.Final = Snapshot{Time: duration, Conc: g.conc.Clone()}
	return series, nil
}
