// Package tune implements the parameter-space search that finds the best
// roundrobin penalty values: grid enumeration of candidates, one measured
// trial per candidate, top-K ranking of the noisy samples, and a final
// commit of the winner back to the tunable store.
package tune

import (
	"fmt"
	"strings"
)

// Setting is one concrete tunable assignment.
type Setting struct {
	Name  string
	Value int
}

// Candidate assigns a value to every tunable under search. Candidates are
// generated in enumeration order and consumed immediately by one trial.
type Candidate struct {
	Settings []Setting
}

func (c Candidate) String() string {
	parts := make([]string, len(c.Settings))
	for i, s := range c.Settings {
		parts[i] = fmt.Sprintf("%s=%d", s.Name, s.Value)
	}
	return strings.Join(parts, " ")
}

// Axis is one tunable's candidate range [0, N).
type Axis struct {
	Name string
	N    int
}

// Grid is the Cartesian product of its axes. Enumeration is row-major: the
// first axis is the outer loop. The order matters only for tie-breaks;
// equal-bandwidth candidates prefer the first-enumerated one.
type Grid struct {
	Axes []Axis
}

// SingleAxis sweeps one tunable; the other tunable is simply absent from
// every candidate, its range collapsed to the singleton it already holds.
func SingleAxis(name string, n int) Grid {
	return Grid{Axes: []Axis{{Name: name, N: n}}}
}

// Joint varies both tunables, outer loop first.
func Joint(outer, inner Axis) Grid {
	return Grid{Axes: []Axis{outer, inner}}
}

// Size is the total number of candidates.
func (g Grid) Size() int {
	if len(g.Axes) == 0 {
		return 0
	}
	total := 1
	for _, a := range g.Axes {
		if a.N <= 0 {
			return 0
		}
		total *= a.N
	}
	return total
}

// Candidates enumerates the full grid in row-major order. No pruning, no
// early termination: the measurement oracle is not assumed monotonic or
// convex in the tunables, so every candidate is measured.
func (g Grid) Candidates() []Candidate {
	total := g.Size()
	if total == 0 {
		return nil
	}

	out := make([]Candidate, 0, total)
	idx := make([]int, len(g.Axes))
	for {
		settings := make([]Setting, len(g.Axes))
		for i, a := range g.Axes {
			settings[i] = Setting{Name: a.Name, Value: idx[i]}
		}
		out = append(out, Candidate{Settings: settings})

		// Advance the odometer, innermost axis fastest.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < g.Axes[i].N {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}
