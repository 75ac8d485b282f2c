// Package kinet implements fixed-step integration of reaction kinetics.
//
// A [Network] describes a set of compounds and reversible reactions; an
// [Integrator] binds to a network, copies its concentration vector, and
// advances it one explicit Euler step at a time:
//
//	g, _ := kinet.New(1e-3)
//	if err := g.Bind(net); err != nil {
//	    return err
//	}
//	series, err := g.Run(10.0, []float64{2.5, 5.0}, kinet.ClampToZero)
//
// [Session] wraps a bound integrator for externally ticked operation
// (live views, timers) with pause/resume/stop control.
//
// The integrator trusts its input: index tables, stoichiometry and rate
// orders must be consistent beyond what [Integrator.Bind] checks, and a
// network extreme enough to produce NaN or Inf does so without complaint.
package kinet
