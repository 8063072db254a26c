// Package pulse holds time-discretized control fields and the
// conversions between the two grids they live on: sample points of the
// time grid (controls) and midpoints of its intervals (pulses).
package pulse

import "math"

// Control is one scalar control field sampled on the time grid.
// Controls are identified by their backing array, not by value, so a
// field shared between terms stays a single control.
type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

// Constant returns a control with n samples of the given value.
func Constant(n int, v float64) Control {
	c := make(Control, n)
	for i := range c {
		c[i] = v
	}
	return c
}

// Shaped returns a flat-top control with sine-squared switch-on and
// switch-off ramps of length tRise.
func Shaped(tlist []float64, amplitude, tRise float64) Control {
	c := make(Control, len(tlist))
	if len(tlist) == 0 {
		return c
	}
	t0 := tlist[0]
	t1 := tlist[len(tlist)-1]
	for i, t := range tlist {
		c[i] = amplitude * flattop(t, t0, t1, tRise)
	}
	return c
}

func flattop(t, t0, t1, tRise float64) float64 {
	if t < t0 || t > t1 {
		return 0
	}
	if t < t0+tRise {
		x := math.Sin(math.Pi * (t - t0) / (2 * tRise))
		return x * x
	}
	if t > t1-tRise {
		x := math.Sin(math.Pi * (t1 - t) / (2 * tRise))
		return x * x
	}
	return 1
}

// OnMidpoints resamples a control defined on the time grid onto the
// interval midpoints, dropping one sample.
func OnMidpoints(c Control) Control {
	if len(c) < 2 {
		return Control{}
	}
	p := make(Control, len(c)-1)
	for i := range p {
		p[i] = 0.5 * (c[i] + c[i+1])
	}
	return p
}

// OnTlist resamples a pulse defined on interval midpoints back onto the
// time grid. The first and last samples take the boundary pulse values,
// interior samples average the two adjacent intervals.
func OnTlist(p Control) Control {
	if len(p) == 0 {
		return Control{}
	}
	c := make(Control, len(p)+1)
	c[0] = p[0]
	c[len(c)-1] = p[len(p)-1]
	for i := 1; i < len(c)-1; i++ {
		c[i] = 0.5 * (p[i-1] + p[i])
	}
	return c
}

// Midpoints returns the interval midpoints of a time grid.
func Midpoints(tlist []float64) []float64 {
	if len(tlist) < 2 {
		return nil
	}
	m := make([]float64, len(tlist)-1)
	for i := range m {
		m[i] = 0.5 * (tlist[i] + tlist[i+1])
	}
	return m
}
