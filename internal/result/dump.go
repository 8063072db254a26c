package result

import (
	"encoding/gob"
	"io"
	"time"

	"github.com/san-kum/krotov/internal/objective"
	"github.com/san-kum/krotov/internal/pulse"
)

// dumpV1 is the serializable subset of a Result. Objectives and States
// reference operator matrices that do not survive generic
// serialization, and InfoVals are opaque; none of them are persisted.
// gob has no complex support, so overlaps are stored as split
// real/imaginary parts.
type dumpV1 struct {
	Tlist             []float64
	Iters             []int
	IterSeconds       []int
	TauRe             [][]float64
	TauIm             [][]float64
	GuessControls     []pulse.Control
	OptimizedControls []pulse.Control
	ControlsMapping   objective.ControlsMapping
	AllPulses         [][]pulse.Control
	StartLocalTime    time.Time
	EndLocalTime      time.Time
}

// Dump writes the result as an opaque gob blob. The Objectives, States
// and InfoVals attributes are not preserved; after Load the caller must
// reattach an appropriate Objectives list before calling
// OptimizedObjectives.
func (r *Result) Dump(w io.Writer) error {
	d := dumpV1{
		Tlist:             r.Tlist,
		Iters:             r.Iters,
		IterSeconds:       r.IterSeconds,
		TauRe:             make([][]float64, len(r.TauVals)),
		TauIm:             make([][]float64, len(r.TauVals)),
		GuessControls:     r.GuessControls,
		OptimizedControls: r.OptimizedControls,
		ControlsMapping:   r.ControlsMapping,
		AllPulses:         r.AllPulses,
		StartLocalTime:    r.StartLocalTime,
		EndLocalTime:      r.EndLocalTime,
	}
	for i, tau := range r.TauVals {
		d.TauRe[i] = make([]float64, len(tau))
		d.TauIm[i] = make([]float64, len(tau))
		for j, v := range tau {
			d.TauRe[i][j] = real(v)
			d.TauIm[i][j] = imag(v)
		}
	}
	return gob.NewEncoder(w).Encode(d)
}

// Load reads a result previously written by Dump. The returned Result
// has empty Objectives, States and InfoVals; see Dump.
func Load(r io.Reader) (*Result, error) {
	var d dumpV1
	if err := gob.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	res := New()
	res.Tlist = d.Tlist
	res.Iters = d.Iters
	res.IterSeconds = d.IterSeconds
	res.GuessControls = d.GuessControls
	res.OptimizedControls = d.OptimizedControls
	res.ControlsMapping = d.ControlsMapping
	res.AllPulses = d.AllPulses
	res.StartLocalTime = d.StartLocalTime
	res.EndLocalTime = d.EndLocalTime
	res.TauVals = make([][]complex128, len(d.TauRe))
	res.InfoVals = make([]any, len(d.Iters))
	for i := range d.TauRe {
		tau := make([]complex128, len(d.TauRe[i]))
		for j := range tau {
			tau[j] = complex(d.TauRe[i][j], d.TauIm[i][j])
		}
		res.TauVals[i] = tau
	}
	return res, nil
}
