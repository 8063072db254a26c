package objective

import "github.com/san-kum/krotov/internal/pulse"

// sameControl reports whether two controls are the same field, by
// backing array identity. Controls are never compared by value: two
// distinct fields may hold equal samples.
func sameControl(a, b pulse.Control) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return &a[0] == &b[0]
}

// ExtractControls returns the unique controls referenced anywhere in
// the objectives, in order of first appearance. The returned order
// defines the flat control index used by every mapping descriptor.
func ExtractControls(objs []Objective) []pulse.Control {
	var controls []pulse.Control
	add := func(c pulse.Control) {
		for _, known := range controls {
			if sameControl(known, c) {
				return
			}
		}
		controls = append(controls, c)
	}
	for _, obj := range objs {
		for _, c := range obj.H.Controls() {
			add(c)
		}
		for _, cop := range obj.COps {
			for _, c := range cop.Controls() {
				add(c)
			}
		}
	}
	return controls
}

// ExtractControlsMapping records, for each objective and each of its
// terms, the entry positions at which each control appears. The result
// honors the shape contract: one ObjectiveMapping per objective, each
// with 1+len(COps) term mappings of len(controls) descriptors.
func ExtractControlsMapping(objs []Objective, controls []pulse.Control) ControlsMapping {
	mapping := make(ControlsMapping, len(objs))
	for i, obj := range objs {
		objMap := make(ObjectiveMapping, 0, 1+len(obj.COps))
		objMap = append(objMap, termMapping(obj.H, controls))
		for _, cop := range obj.COps {
			objMap = append(objMap, termMapping(cop, controls))
		}
		mapping[i] = objMap
	}
	return mapping
}

func termMapping(t Term, controls []pulse.Control) TermMapping {
	tm := make(TermMapping, len(controls))
	for k, c := range controls {
		positions := []int{}
		for p, e := range t {
			if e.Control != nil && sameControl(e.Control, c) {
				positions = append(positions, p)
			}
		}
		tm[k] = positions
	}
	return tm
}
