package optimize

import (
	"github.com/san-kum/krotov/internal/objective"
	"github.com/san-kum/krotov/internal/pulse"
	"github.com/san-kum/krotov/internal/quantum"
)

// krotov holds the per-run propagation state: which generator entry is
// driven by which control, resolved once from the controls mapping.
type krotov struct {
	objs       []objective.Objective
	mapping    objective.ControlsMapping
	dt         float64
	nIntervals int
	// entryControl[i][p] is the flat control index driving entry p of
	// objective i's generator term, or -1 for fixed entries.
	entryControl [][]int
}

func newKrotov(objs []objective.Objective, mapping objective.ControlsMapping, dt float64, nIntervals int) *krotov {
	k := &krotov{objs: objs, mapping: mapping, dt: dt, nIntervals: nIntervals}
	k.entryControl = make([][]int, len(objs))
	for i, obj := range objs {
		ec := make([]int, len(obj.H))
		for p := range ec {
			ec[p] = -1
		}
		for ci, positions := range mapping[i][0] {
			for _, p := range positions {
				ec[p] = ci
			}
		}
		k.entryControl[i] = ec
	}
	return k
}

// deriv computes dst = -i H(interval) psi for objective oi, with the
// generator evaluated at the given pulse interval.
func (k *krotov) deriv(oi int, dst, psi quantum.State, pulses []pulse.Control, interval int) {
	dst.Zero()
	for p, e := range k.objs[oi].H {
		coeff := complex128(1)
		if ci := k.entryControl[oi][p]; ci >= 0 {
			coeff = complex(pulses[ci][interval], 0)
		}
		e.Op.MulAddTo(dst, coeff, psi)
	}
	dst.Scale(complex(0, -1))
}

// step advances psi across one pulse interval with a classic RK4
// stage. The generator is piecewise constant on the interval, so the
// stages share its evaluation point. A negative dt steps backward.
func (k *krotov) step(oi int, psi quantum.State, pulses []pulse.Control, interval int, dt float64) quantum.State {
	n := len(psi)
	k1 := make(quantum.State, n)
	k2 := make(quantum.State, n)
	k3 := make(quantum.State, n)
	k4 := make(quantum.State, n)
	scratch := make(quantum.State, n)

	k.deriv(oi, k1, psi, pulses, interval)

	copy(scratch, psi)
	scratch.AddScaled(complex(dt*0.5, 0), k1)
	k.deriv(oi, k2, scratch, pulses, interval)

	copy(scratch, psi)
	scratch.AddScaled(complex(dt*0.5, 0), k2)
	k.deriv(oi, k3, scratch, pulses, interval)

	copy(scratch, psi)
	scratch.AddScaled(complex(dt, 0), k3)
	k.deriv(oi, k4, scratch, pulses, interval)

	out := psi.Clone()
	dt6 := complex(dt/6.0, 0)
	for i := 0; i < n; i++ {
		out[i] += dt6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}
	return out
}

// propagateAll forward-propagates every objective's initial state under
// the given pulses, returning per-objective trajectories over the full
// time grid.
func (k *krotov) propagateAll(pulses []pulse.Control) [][]quantum.State {
	trajs := make([][]quantum.State, len(k.objs))
	for oi, obj := range k.objs {
		traj := make([]quantum.State, 0, k.nIntervals+1)
		psi := obj.InitialState.Clone()
		traj = append(traj, psi.Clone())
		for i := 0; i < k.nIntervals; i++ {
			psi = k.step(oi, psi, pulses, i, k.dt)
			traj = append(traj, psi.Clone())
		}
		trajs[oi] = traj
	}
	return trajs
}

// propagateAllBackward propagates the co-states from the final-time
// boundary condition chi(T) = (tau_i/N) |target_i> down to t0,
// returning chronologically ordered trajectories.
func (k *krotov) propagateAllBackward(pulses []pulse.Control, tau []complex128) [][]quantum.State {
	n := float64(len(k.objs))
	chis := make([][]quantum.State, len(k.objs))
	for oi, obj := range k.objs {
		traj := make([]quantum.State, k.nIntervals+1)
		chi := obj.TargetState.Clone()
		chi.Scale(tau[oi] / complex(n, 0))
		traj[k.nIntervals] = chi.Clone()
		for i := k.nIntervals - 1; i >= 0; i-- {
			chi = k.step(oi, chi, pulses, i, -k.dt)
			traj[i] = chi.Clone()
		}
		chis[oi] = traj
	}
	return chis
}

// update performs one sequential Krotov sweep: at each interval the
// pulse update is computed from the stored co-states and the state
// propagated under the already-updated pulses (immediate feedback),
// then the states advance across the interval. Returns the updated
// pulses and the new forward trajectories.
func (k *krotov) update(pulses []pulse.Control, chis [][]quantum.State, midpoints []float64, opts Options) ([]pulse.Control, [][]quantum.State) {
	next := clonePulses(pulses)
	psis := make([]quantum.State, len(k.objs))
	trajs := make([][]quantum.State, len(k.objs))
	for oi, obj := range k.objs {
		psis[oi] = obj.InitialState.Clone()
		trajs[oi] = append(trajs[oi], psis[oi].Clone())
	}
	for i := range midpoints {
		shape := 1.0
		if opts.UpdateShape != nil {
			shape = opts.UpdateShape(midpoints[i])
		}
		for ci := range next {
			sum := 0.0
			for oi := range k.objs {
				sum += k.gradientTerm(oi, ci, chis[oi][i], psis[oi])
			}
			next[ci][i] = pulses[ci][i] + shape/opts.LambdaA*sum
		}
		for oi := range k.objs {
			psis[oi] = k.step(oi, psis[oi], next, i, k.dt)
			trajs[oi] = append(trajs[oi], psis[oi].Clone())
		}
	}
	return next, trajs
}

// gradientTerm is Im <chi| dH/deps_ci |psi> for objective oi, summing
// the operators of every entry the control drives.
func (k *krotov) gradientTerm(oi, ci int, chi, psi quantum.State) float64 {
	sum := 0.0
	hpsi := make(quantum.State, len(psi))
	for _, p := range k.mapping[oi][0][ci] {
		k.objs[oi].H[p].Op.Apply(hpsi, psi)
		sum += imag(quantum.Overlap(chi, hpsi))
	}
	return sum
}

// overlaps computes tau_i = <target_i | psi_i(T)> from forward
// trajectories.
func (k *krotov) overlaps(trajs [][]quantum.State) []complex128 {
	tau := make([]complex128, len(k.objs))
	for oi, obj := range k.objs {
		final := trajs[oi][len(trajs[oi])-1]
		tau[oi] = quantum.Overlap(obj.TargetState, final)
	}
	return tau
}
