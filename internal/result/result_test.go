package result_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/krotov/internal/objective"
	"github.com/san-kum/krotov/internal/pulse"
	"github.com/san-kum/krotov/internal/quantum"
	"github.com/san-kum/krotov/internal/result"
)

var _ = Describe("OptimizedObjectives", func() {
	var (
		hFixed *quantum.Operator
		hOp    *quantum.Operator
		guess  pulse.Control
		opt    pulse.Control
		obj    objective.Objective
		r      *result.Result
	)

	BeforeEach(func() {
		hFixed = quantum.NewOperator(2, []complex128{1, 0, 0, -1})
		hOp = quantum.NewOperator(2, []complex128{0, 1, 1, 0})
		guess = pulse.Control{0.1, 0.2, 0.3}
		opt = pulse.Control{1.0, 2.0, 3.0}
		obj = objective.Objective{
			H:            objective.Term{objective.Fixed(hFixed), objective.Controlled(hOp, guess)},
			InitialState: quantum.Basis(2, 0),
			TargetState:  quantum.Basis(2, 1),
		}
		r = result.New()
		r.Objectives = []objective.Objective{obj}
		r.GuessControls = []pulse.Control{guess}
		r.OptimizedControls = []pulse.Control{opt}
		r.ControlsMapping = objective.ExtractControlsMapping(r.Objectives, r.GuessControls)
	})

	It("plugs the optimized control into the generator term", func() {
		objs, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		Expect(objs).To(HaveLen(1))
		Expect(objs[0].H).To(HaveLen(2))
		Expect(objs[0].H[0].Op).To(BeIdenticalTo(hFixed))
		Expect(objs[0].H[1].Op).To(BeIdenticalTo(hOp))
		Expect(&objs[0].H[1].Control[0]).To(BeIdenticalTo(&opt[0]))
	})

	It("never mutates the stored objective or the guess control", func() {
		_, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		Expect(&obj.H[1].Control[0]).To(BeIdenticalTo(&guess[0]))
		Expect(guess).To(Equal(pulse.Control{0.1, 0.2, 0.3}))
		Expect(r.GuessControls[0]).To(Equal(guess))
	})

	It("carries initial and target states over by reference", func() {
		objs, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		Expect(&objs[0].InitialState[0]).To(BeIdenticalTo(&obj.InitialState[0]))
		Expect(&objs[0].TargetState[0]).To(BeIdenticalTo(&obj.TargetState[0]))
	})

	It("yields value-equal results on repeated calls", func() {
		a, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		b, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("writes a control shared between two positions into both", func() {
		shared := objective.Objective{
			H: objective.Term{
				objective.Controlled(hOp, guess),
				objective.Fixed(hFixed),
				objective.Controlled(hFixed, guess),
			},
			InitialState: quantum.Basis(2, 0),
			TargetState:  quantum.Basis(2, 1),
		}
		r.Objectives = []objective.Objective{shared}
		r.ControlsMapping = objective.ExtractControlsMapping(r.Objectives, r.GuessControls)

		objs, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		Expect(&objs[0].H[0].Control[0]).To(BeIdenticalTo(&opt[0]))
		Expect(&objs[0].H[2].Control[0]).To(BeIdenticalTo(&opt[0]))
		Expect(objs[0].H[1].Control).To(BeNil())
	})

	It("substitutes into dissipation terms", func() {
		deph := quantum.NewOperator(2, []complex128{1, 0, 0, 0})
		obj.COps = []objective.Term{{objective.Controlled(deph, guess)}}
		r.Objectives = []objective.Objective{obj}
		r.ControlsMapping = objective.ExtractControlsMapping(r.Objectives, r.GuessControls)

		objs, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		Expect(objs[0].COps).To(HaveLen(1))
		Expect(&objs[0].COps[0][0].Control[0]).To(BeIdenticalTo(&opt[0]))
		Expect(&obj.COps[0][0].Control[0]).To(BeIdenticalTo(&guess[0]))
	})

	It("returns an independent copy when there are no controls", func() {
		fixedOnly := objective.Objective{
			H:            objective.Term{objective.Fixed(hFixed)},
			InitialState: quantum.Basis(2, 0),
			TargetState:  quantum.Basis(2, 1),
		}
		r.Objectives = []objective.Objective{fixedOnly}
		r.GuessControls = nil
		r.OptimizedControls = nil
		r.ControlsMapping = objective.ExtractControlsMapping(r.Objectives, nil)

		objs, err := r.OptimizedObjectives()
		Expect(err).NotTo(HaveOccurred())
		Expect(objs[0].H).To(Equal(fixedOnly.H))
		// The pair level is copied, not aliased.
		Expect(&objs[0].H[0]).NotTo(BeIdenticalTo(&fixedOnly.H[0]))
	})

	Describe("structural errors", func() {
		It("rejects a mapping with the wrong objective count", func() {
			r.ControlsMapping = objective.ControlsMapping{}
			_, err := r.OptimizedObjectives()
			Expect(err).To(MatchError(objective.ErrMappingShape))
		})

		It("rejects a mapping with the wrong term count", func() {
			r.ControlsMapping[0] = append(r.ControlsMapping[0], objective.TermMapping{{}})
			_, err := r.OptimizedObjectives()
			Expect(err).To(MatchError(objective.ErrMappingShape))
		})

		It("rejects a descriptor count that mismatches the controls", func() {
			r.ControlsMapping[0][0] = objective.TermMapping{}
			_, err := r.OptimizedObjectives()
			Expect(err).To(MatchError(objective.ErrMappingShape))
		})

		It("rejects a position outside the term", func() {
			r.ControlsMapping[0][0] = objective.TermMapping{{7}}
			_, err := r.OptimizedObjectives()
			Expect(err).To(MatchError(objective.ErrPositionRange))
		})

		It("rejects a position addressing a fixed entry", func() {
			r.ControlsMapping[0][0] = objective.TermMapping{{0}}
			_, err := r.OptimizedObjectives()
			Expect(err).To(MatchError(objective.ErrFixedEntry))
		})
	})
})

var _ = Describe("summary rendering", func() {
	It("renders n/a for unset timestamps", func() {
		r := result.New()
		Expect(r.String()).To(ContainSubstring("- Started at n/a"))
		Expect(r.String()).To(ContainSubstring("- Ended at n/a"))
	})

	It("renders set timestamps in the fixed layout", func() {
		r := result.New()
		r.StartLocalTime = time.Date(2026, 8, 26, 9, 5, 7, 0, time.Local)
		r.EndLocalTime = time.Date(2026, 8, 26, 10, 30, 0, 0, time.Local)
		Expect(r.String()).To(ContainSubstring("- Started at 2026-08-26 09:05:07"))
		Expect(r.String()).To(ContainSubstring("- Ended at 2026-08-26 10:30:00"))
	})

	It("does not count the zero iteration", func() {
		r := result.New()
		r.RecordIteration(0, 0, nil, nil, nil)
		Expect(r.String()).To(ContainSubstring("Number of iterations: 0"))

		r.RecordIteration(1, 2, nil, nil, nil)
		r.RecordIteration(2, 2, nil, nil, nil)
		Expect(r.String()).To(ContainSubstring("Number of iterations: 2"))
	})

	It("renders the objective count", func() {
		r := result.New()
		r.Objectives = make([]objective.Objective, 3)
		Expect(r.String()).To(ContainSubstring("Number of objectives: 3"))
	})
})

var _ = Describe("RecordIteration", func() {
	It("keeps the per-iteration sequences parallel", func() {
		r := result.New()
		r.RecordIteration(0, 0, nil, []complex128{1}, nil)
		r.RecordIteration(1, 3, 0.5, []complex128{0.9i}, []pulse.Control{{1, 2}})

		Expect(r.Iters).To(Equal([]int{0, 1}))
		Expect(r.IterSeconds).To(Equal([]int{0, 3}))
		Expect(r.InfoVals).To(HaveLen(2))
		Expect(r.InfoVals[0]).To(BeNil())
		Expect(r.InfoVals[1]).To(Equal(0.5))
		Expect(r.TauVals).To(HaveLen(2))
		// AllPulses only grows when pulses are stored.
		Expect(r.AllPulses).To(HaveLen(1))
	})
})

var _ = Describe("Dump and Load", func() {
	It("round-trips everything except objectives, states and infos", func() {
		r := result.New()
		r.Tlist = []float64{0, 0.5, 1}
		r.GuessControls = []pulse.Control{{0.1, 0.2, 0.3}}
		r.OptimizedControls = []pulse.Control{{1, 2, 3}}
		r.ControlsMapping = objective.ControlsMapping{{objective.TermMapping{{1}}}}
		r.RecordIteration(0, 0, nil, []complex128{0.2 + 0.1i}, nil)
		r.RecordIteration(1, 4, 0.7, []complex128{0.9 + 0.05i}, nil)
		r.StartLocalTime = time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
		r.EndLocalTime = time.Date(2026, 8, 26, 9, 1, 0, 0, time.UTC)

		var buf bytes.Buffer
		Expect(r.Dump(&buf)).To(Succeed())

		loaded, err := result.Load(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Tlist).To(Equal(r.Tlist))
		Expect(loaded.Iters).To(Equal(r.Iters))
		Expect(loaded.IterSeconds).To(Equal(r.IterSeconds))
		Expect(loaded.TauVals).To(Equal(r.TauVals))
		Expect(loaded.GuessControls).To(Equal(r.GuessControls))
		Expect(loaded.OptimizedControls).To(Equal(r.OptimizedControls))
		Expect(loaded.ControlsMapping).To(Equal(r.ControlsMapping))
		Expect(loaded.StartLocalTime.Equal(r.StartLocalTime)).To(BeTrue())
		Expect(loaded.EndLocalTime.Equal(r.EndLocalTime)).To(BeTrue())
		Expect(loaded.Objectives).To(BeEmpty())
		Expect(loaded.States).To(BeEmpty())
	})
})
