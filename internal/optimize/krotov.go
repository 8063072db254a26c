// Package optimize implements a first-order Krotov optimization loop
// over a set of control objectives. It drives the result container:
// one RecordIteration per pass, iteration 0 being the unoptimized
// guess, and a single Finalize at the end.
package optimize

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/krotov/internal/objective"
	"github.com/san-kum/krotov/internal/pulse"
	"github.com/san-kum/krotov/internal/quantum"
	"github.com/san-kum/krotov/internal/result"
)

// InfoHook computes an opaque per-iteration info value that is appended
// to the result's InfoVals.
type InfoHook func(r *result.Result, iter int) any

// Options configure a Krotov run.
type Options struct {
	// LambdaA is the inverse Krotov step width. Larger values mean
	// smaller pulse updates.
	LambdaA float64
	// Iterations is the number of optimization iterations to perform,
	// not counting the zero iteration.
	Iterations int
	// StopJT stops the loop early once the functional drops below it.
	// Zero disables the check.
	StopJT float64
	// StoreAllPulses records the pulses of every iteration in the
	// result.
	StoreAllPulses bool
	// UpdateShape scales the pulse update at a given time; nil means no
	// shaping. Used to keep switch-on/off ramps intact.
	UpdateShape func(t float64) float64
	// InfoHook, when set, replaces the default info value (the current
	// functional) appended per iteration.
	InfoHook InfoHook
	// OnIteration, when set, observes every recorded iteration. The
	// pulses slice is a snapshot and safe to retain.
	OnIteration func(iter int, jt float64, tau []complex128, pulses []pulse.Control)
}

// Run optimizes the controls of the given objectives on the time grid
// tlist and returns the populated result. Propagation is unitary under
// each objective's generator term; dissipation terms are carried in the
// data model but do not enter the propagator.
func Run(ctx context.Context, objs []objective.Objective, tlist []float64, opts Options) (*result.Result, error) {
	if len(objs) == 0 {
		return nil, fmt.Errorf("optimize: no objectives")
	}
	if len(tlist) < 2 {
		return nil, fmt.Errorf("optimize: tlist needs at least two points, got %d", len(tlist))
	}
	if opts.LambdaA <= 0 {
		return nil, fmt.Errorf("optimize: lambda_a must be positive, got %f", opts.LambdaA)
	}

	controls := objective.ExtractControls(objs)
	mapping := objective.ExtractControlsMapping(objs, controls)
	for _, c := range controls {
		if len(c) != len(tlist) {
			return nil, fmt.Errorf("optimize: control has %d samples for %d time grid points", len(c), len(tlist))
		}
	}

	nt := len(tlist)
	dt := (tlist[nt-1] - tlist[0]) / float64(nt-1)
	midpoints := pulse.Midpoints(tlist)

	// Working pulses live on the interval midpoints.
	pulses := make([]pulse.Control, len(controls))
	for k, c := range controls {
		pulses[k] = pulse.OnMidpoints(c)
	}

	r := result.New()
	r.Objectives = objs
	r.Tlist = tlist
	r.GuessControls = controls
	r.ControlsMapping = mapping
	r.StartLocalTime = time.Now()

	kr := newKrotov(objs, mapping, dt, nt-1)

	// Iteration 0: the guess, evaluated but not counted.
	start := time.Now()
	states := kr.propagateAll(pulses)
	tau := kr.overlaps(states)
	jt := functional(tau)
	record(r, opts, 0, int(time.Since(start).Seconds()), jt, tau, pulses)
	logrus.Infof("[iter %3d] J_T = %.4e (guess)", 0, jt)

	for it := 1; it <= opts.Iterations; it++ {
		select {
		case <-ctx.Done():
			finalize(r, pulses, states)
			return r, ctx.Err()
		default:
		}

		start = time.Now()
		chis := kr.propagateAllBackward(pulses, tau)
		pulses, states = kr.update(pulses, chis, midpoints, opts)
		tau = kr.overlaps(states)
		jt = functional(tau)

		secs := int(time.Since(start).Seconds())
		record(r, opts, it, secs, jt, tau, pulses)
		logrus.Infof("[iter %3d] J_T = %.4e (%ds)", it, jt, secs)

		if opts.StopJT > 0 && jt < opts.StopJT {
			logrus.Infof("functional below %.1e, stopping", opts.StopJT)
			break
		}
	}

	finalize(r, pulses, states)
	return r, nil
}

func record(r *result.Result, opts Options, iter, secs int, jt float64, tau []complex128, pulses []pulse.Control) {
	var info any = jt
	if opts.InfoHook != nil {
		info = opts.InfoHook(r, iter)
	}
	var stored []pulse.Control
	if opts.StoreAllPulses {
		stored = clonePulses(pulses)
	}
	r.RecordIteration(iter, secs, info, tau, stored)
	if opts.OnIteration != nil {
		opts.OnIteration(iter, jt, tau, clonePulses(pulses))
	}
}

func finalize(r *result.Result, pulses []pulse.Control, states [][]quantum.State) {
	optimized := make([]pulse.Control, len(pulses))
	for k, p := range pulses {
		optimized[k] = pulse.OnTlist(p)
	}
	r.Finalize(optimized, states)
}

// functional is J_T = 1 - (1/N) sum |tau_i|^2.
func functional(tau []complex128) float64 {
	sum := 0.0
	for _, v := range tau {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return 1 - sum/float64(len(tau))
}

func clonePulses(pulses []pulse.Control) []pulse.Control {
	out := make([]pulse.Control, len(pulses))
	for k, p := range pulses {
		out[k] = p.Clone()
	}
	return out
}
