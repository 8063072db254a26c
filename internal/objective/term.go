package objective

import (
	"github.com/san-kum/krotov/internal/pulse"
	"github.com/san-kum/krotov/internal/quantum"
)

// Entry is one element of a Term: either a fixed operator or an
// operator modulated by a control field.
type Entry struct {
	Op      *quantum.Operator
	Control pulse.Control // nil for fixed entries
}

func Fixed(op *quantum.Operator) Entry {
	return Entry{Op: op}
}

func Controlled(op *quantum.Operator, c pulse.Control) Entry {
	return Entry{Op: op, Control: c}
}

// Term is an ordered generator structure, the analog of a nested
// operator list like [H0, [H1, eps1], [H2, eps2]]. Entries are values,
// so copying the slice yields fresh pairs while operator and control
// references stay shared.
type Term []Entry

// Clone copies the entry sequence. Operators and controls are shared
// with the original; replacing an entry in the clone never reaches the
// original.
func (t Term) Clone() Term {
	out := make(Term, len(t))
	copy(out, t)
	return out
}

// Controls returns the control of every controlled entry, in order of
// appearance, duplicates included.
func (t Term) Controls() []pulse.Control {
	var out []pulse.Control
	for _, e := range t {
		if e.Control != nil {
			out = append(out, e.Control)
		}
	}
	return out
}
