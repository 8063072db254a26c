// Package models provides ready-made control problems for the CLI.
package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/krotov/internal/objective"
	"github.com/san-kum/krotov/internal/pulse"
	"github.com/san-kum/krotov/internal/quantum"
)

// PulseParams shape the guess control fields.
type PulseParams struct {
	Amplitude float64
	TRise     float64
}

type builder func(tlist []float64, p PulseParams) []objective.Objective

var registry = map[string]builder{
	"tls":    buildTLS,
	"lambda": buildLambda,
}

// Get builds the objectives for a named model on the given time grid.
func Get(name string, tlist []float64, p PulseParams) ([]objective.Objective, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return b(tlist, p), nil
}

func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildTLS is a driven two-level system: drift -omega/2 sigma_z, one
// control on sigma_x, population transfer |0> -> |1>.
func buildTLS(tlist []float64, p PulseParams) []objective.Objective {
	omega := 1.0
	h0 := quantum.NewOperator(2, []complex128{
		complex(-omega/2, 0), 0,
		0, complex(omega/2, 0),
	})
	h1 := quantum.NewOperator(2, []complex128{
		0, 1,
		1, 0,
	})
	guess := pulse.Shaped(tlist, p.Amplitude, p.TRise)
	return []objective.Objective{{
		H:            objective.Term{objective.Fixed(h0), objective.Controlled(h1, guess)},
		InitialState: quantum.Basis(2, 0),
		TargetState:  quantum.Basis(2, 1),
	}}
}

// buildLambda is a three-level lambda system with pump and Stokes
// controls, transferring population from |0> to |2> through the
// intermediate level.
func buildLambda(tlist []float64, p PulseParams) []objective.Objective {
	delta := 1.0
	h0 := quantum.NewOperator(3, nil)
	h0.Set(1, 1, complex(delta, 0))
	pump := quantum.NewOperator(3, nil)
	pump.Set(0, 1, 1)
	pump.Set(1, 0, 1)
	stokes := quantum.NewOperator(3, nil)
	stokes.Set(1, 2, 1)
	stokes.Set(2, 1, 1)

	pumpGuess := pulse.Shaped(tlist, p.Amplitude, p.TRise)
	stokesGuess := pulse.Shaped(tlist, p.Amplitude, p.TRise)
	return []objective.Objective{{
		H: objective.Term{
			objective.Fixed(h0),
			objective.Controlled(pump, pumpGuess),
			objective.Controlled(stokes, stokesGuess),
		},
		InitialState: quantum.Basis(3, 0),
		TargetState:  quantum.Basis(3, 2),
	}}
}
