// Package result holds the outcome of a Krotov optimization run:
// per-iteration bookkeeping appended by the optimization loop, the
// guess and optimized control fields, and a derived view that
// reconstructs the objectives with the optimized controls plugged in.
package result

import (
	"fmt"
	"time"

	"github.com/san-kum/krotov/internal/objective"
	"github.com/san-kum/krotov/internal/pulse"
	"github.com/san-kum/krotov/internal/quantum"
)

// TimeFormat is the layout used for the start/end timestamps in the
// rendered summary.
const TimeFormat = "2006-01-02 15:04:05"

// Result aggregates the history and output of one optimization run.
//
// Iters, IterSeconds, InfoVals, TauVals (and AllPulses when pulse
// storing is enabled) are parallel sequences indexed by iteration
// number; iteration 0 is the initial guess. They grow through
// RecordIteration only. Objectives, Tlist, GuessControls and
// ControlsMapping are set once at the start of the run,
// OptimizedControls, States and EndLocalTime once at the end.
//
// A single driver mutates a Result sequentially. Derived reads such as
// OptimizedObjectives are pure and may run concurrently with each
// other, but not with a writer; no internal locking is provided.
type Result struct {
	// Objectives are the control objectives as given to the optimizer.
	Objectives []objective.Objective
	// Tlist is the time grid.
	Tlist []float64
	// Iters holds the iteration numbers, starting at 0.
	Iters []int
	// IterSeconds holds, per iteration, the seconds spent in it.
	IterSeconds []int
	// InfoVals holds, per iteration, the info-hook return value, or nil.
	InfoVals []any
	// TauVals holds, per iteration, the complex overlap of the
	// forward-propagated state with the target state for each objective.
	TauVals [][]complex128
	// GuessControls are the control fields that seeded the optimization.
	GuessControls []pulse.Control
	// OptimizedControls are the final control fields, in the order of
	// GuessControls.
	OptimizedControls []pulse.Control
	// ControlsMapping locates each control inside each objective, as
	// produced by objective.ExtractControlsMapping.
	ControlsMapping objective.ControlsMapping
	// AllPulses holds, per iteration, the optimized pulses on the tlist
	// interval midpoints. Empty unless pulse storing was enabled.
	AllPulses [][]pulse.Control
	// States holds, per objective, the states at every tlist value under
	// the final optimized controls.
	States [][]quantum.State
	// StartLocalTime and EndLocalTime are the run timestamps. The zero
	// value means unset and renders as "n/a".
	StartLocalTime time.Time
	EndLocalTime   time.Time
}

func New() *Result {
	return &Result{
		Objectives:        []objective.Objective{},
		Tlist:             []float64{},
		Iters:             []int{},
		IterSeconds:       []int{},
		InfoVals:          []any{},
		TauVals:           [][]complex128{},
		GuessControls:     []pulse.Control{},
		OptimizedControls: []pulse.Control{},
		ControlsMapping:   objective.ControlsMapping{},
		AllPulses:         [][]pulse.Control{},
		States:            [][]quantum.State{},
	}
}

// RecordIteration appends one row to the parallel per-iteration
// sequences. Keeping them in lockstep is what makes "iteration k"
// addressing valid, so this is the only append path. pulses may be nil
// when pulse storing is disabled.
func (r *Result) RecordIteration(iter, seconds int, info any, tau []complex128, pulses []pulse.Control) {
	r.Iters = append(r.Iters, iter)
	r.IterSeconds = append(r.IterSeconds, seconds)
	r.InfoVals = append(r.InfoVals, info)
	r.TauVals = append(r.TauVals, tau)
	if pulses != nil {
		r.AllPulses = append(r.AllPulses, pulses)
	}
}

// Finalize sets the run outputs and stamps the end time.
func (r *Result) Finalize(optimized []pulse.Control, states [][]quantum.State) {
	r.OptimizedControls = optimized
	r.States = states
	r.EndLocalTime = time.Now()
}

// Iterations reports the number of optimization iterations performed.
// Iteration 0 is the initial guess and is not counted.
func (r *Result) Iterations() int {
	n := len(r.Iters) - 1
	if n < 0 {
		n = 0
	}
	return n
}

func (r *Result) StartLocalTimeString() string {
	return formatLocalTime(r.StartLocalTime)
}

func (r *Result) EndLocalTimeString() string {
	return formatLocalTime(r.EndLocalTime)
}

func formatLocalTime(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format(TimeFormat)
}

func (r *Result) String() string {
	return fmt.Sprintf(`Krotov Optimization Result
--------------------------
- Started at %s
- Number of objectives: %d
- Number of iterations: %d
- Ended at %s`,
		r.StartLocalTimeString(),
		len(r.Objectives),
		r.Iterations(),
		r.EndLocalTimeString(),
	)
}

// OptimizedObjectives reconstructs the objectives with the optimized
// controls substituted per ControlsMapping. It is recomputed on every
// call and never mutates the stored objectives or any control field;
// initial and target states are carried over by reference.
//
// A mapping inconsistent with the objectives or controls yields a
// structural error, never a silently wrong objective.
func (r *Result) OptimizedObjectives() ([]objective.Objective, error) {
	if len(r.ControlsMapping) != len(r.Objectives) {
		return nil, fmt.Errorf("%w: %d objective mappings for %d objectives",
			objective.ErrMappingShape, len(r.ControlsMapping), len(r.Objectives))
	}
	objs := make([]objective.Objective, 0, len(r.Objectives))
	for i, obj := range r.Objectives {
		objMap := r.ControlsMapping[i]
		if len(objMap) != 1+len(obj.COps) {
			return nil, fmt.Errorf("%w: objective %d has %d term mappings for %d terms",
				objective.ErrMappingShape, i, len(objMap), 1+len(obj.COps))
		}
		h, err := plugInControls(obj.H, r.OptimizedControls, objMap[0])
		if err != nil {
			return nil, fmt.Errorf("objective %d: H: %w", i, err)
		}
		cOps := make([]objective.Term, 0, len(obj.COps))
		for j, cop := range obj.COps {
			sub, err := plugInControls(cop, r.OptimizedControls, objMap[j+1])
			if err != nil {
				return nil, fmt.Errorf("objective %d: c_op %d: %w", i, j, err)
			}
			cOps = append(cOps, sub)
		}
		objs = append(objs, objective.Objective{
			H:            h,
			InitialState: obj.InitialState,
			TargetState:  obj.TargetState,
			COps:         cOps,
		})
	}
	return objs, nil
}

// plugInControls returns a copy of t with controls[k] written into the
// control slot of every entry listed in m[k]. The copy shares operator
// leaves with t; t itself is never written to. An all-empty mapping
// yields a plain copy. Positions overlapping across different controls
// are an upstream contract violation and are not detected here;
// repeated positions for the same control are idempotent.
func plugInControls(t objective.Term, controls []pulse.Control, m objective.TermMapping) (objective.Term, error) {
	if len(m) != len(controls) {
		return nil, fmt.Errorf("%w: %d descriptors for %d controls",
			objective.ErrMappingShape, len(m), len(controls))
	}
	out := t.Clone()
	for k, positions := range m {
		for _, p := range positions {
			if p < 0 || p >= len(out) {
				return nil, fmt.Errorf("%w: position %d in term of %d entries",
					objective.ErrPositionRange, p, len(out))
			}
			if out[p].Control == nil {
				return nil, fmt.Errorf("%w: position %d", objective.ErrFixedEntry, p)
			}
			out[p] = objective.Entry{Op: out[p].Op, Control: controls[k]}
		}
	}
	return out, nil
}
