// Package objective models one control problem instance: a generator
// term built from fixed and controlled operators, optional dissipation
// terms of the same shape, and initial/target states. It also provides
// the extraction step that locates every control inside that structure,
// producing the mapping the result container relies on.
package objective

import "github.com/san-kum/krotov/internal/quantum"

// Objective is one control problem instance. It is treated as immutable
// by everything downstream; derived views copy the terms and share the
// states.
type Objective struct {
	H            Term
	InitialState quantum.State
	TargetState  quantum.State
	COps         []Term
}

// TermMapping locates controls inside one term: TermMapping[k] lists
// the entry positions where control k (by flat-list index) appears.
// A control absent from the term has an empty position list.
type TermMapping [][]int

// ObjectiveMapping holds one TermMapping for the generator term
// followed by one per dissipation term.
type ObjectiveMapping []TermMapping

// ControlsMapping holds one ObjectiveMapping per objective, as produced
// by ExtractControlsMapping.
type ControlsMapping []ObjectiveMapping
